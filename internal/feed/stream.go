package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pilumvli199/DT6/internal/instrument"
	"github.com/pilumvli199/DT6/internal/notify"
	"github.com/pilumvli199/DT6/internal/tick"
)

// Mirror persists the latest observed price per key. Nil disables
// mirroring.
type Mirror interface {
	Upsert(ctx context.Context, key, segment string, price float64, observedAt time.Time) error
}

// StreamerConfig configures the streaming client.
type StreamerConfig struct {
	URL         string
	ClientID    string
	AccessToken string
	Symbols     []string

	ReconnectDelay    time.Duration
	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
	WriteTimeout      time.Duration
	BufferSize        int
}

// Streamer owns the live connection lifecycle: connect, authenticate,
// subscribe, receive, reconnect after a fixed delay, forever.
type Streamer struct {
	cfg      StreamerConfig
	resolver *instrument.Resolver
	store    *tick.Store
	notifier notify.Notifier
	mirror   Mirror
	logger   *slog.Logger
}

type authFrame struct {
	Action      string `json:"action"`
	ClientID    string `json:"client_id"`
	AccessToken string `json:"access_token"`
}

type subscribeFrame struct {
	Action      string         `json:"action"`
	Instruments []subscription `json:"instruments"`
}

type subscription struct {
	Segment      string `json:"segment"`
	InstrumentID string `json:"instrument_id"`
}

// NewStreamer creates a Streamer. mirror may be nil.
func NewStreamer(cfg StreamerConfig, resolver *instrument.Resolver, store *tick.Store, notifier notify.Notifier, mirror Mirror, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Streamer{
		cfg:      cfg,
		resolver: resolver,
		store:    store,
		notifier: notifier,
		mirror:   mirror,
		logger:   logger,
	}
}

// Run drives the reconnect loop until ctx is cancelled. It never gives
// up: any transport failure waits the fixed reconnect delay and dials
// again.
func (s *Streamer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		session := uuid.NewString()[:8]
		s.runSession(ctx, s.logger.With("session", session))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ReconnectDelay):
			s.logger.Info("reconnecting", "delay", s.cfg.ReconnectDelay)
		}
	}
}

// runSession performs one connect → auth → subscribe → receive cycle.
// Any exit path returns to Run, which schedules the reconnect.
func (s *Streamer) runSession(ctx context.Context, logger *slog.Logger) {
	client := NewClient(ClientConfig{
		URL:               s.cfg.URL,
		HeartbeatInterval: s.cfg.HeartbeatInterval,
		PongTimeout:       s.cfg.PongTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BufferSize:        s.cfg.BufferSize,
	}, logger)

	logger.Info("connecting to feed", "url", s.cfg.URL)
	if err := client.Connect(ctx); err != nil {
		logger.Warn("feed connect failed", "error", err)
		return
	}
	defer client.Close()

	if err := s.sendAuth(client); err != nil {
		logger.Warn("auth send failed", "error", err)
		return
	}

	s.subscribe(ctx, client, logger)

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-client.Errors():
			logger.Warn("feed connection error", "error", err)
			return
		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			s.handleMessage(ctx, msg, logger)
		}
	}
}

func (s *Streamer) sendAuth(client *Client) error {
	frame, err := json.Marshal(authFrame{
		Action:      "auth",
		ClientID:    s.cfg.ClientID,
		AccessToken: s.cfg.AccessToken,
	})
	if err != nil {
		return err
	}
	return client.Send(frame)
}

// subscribe resolves the symbol set (patching from the catalog when
// needed) and sends the subscribe frame. Zero resolved instruments is not
// fatal: the connection stays open without a subscription.
func (s *Streamer) subscribe(ctx context.Context, client *Client, logger *slog.Logger) {
	refs, unresolved := s.resolver.ResolveAll(s.cfg.Symbols)
	if len(unresolved) > 0 {
		if err := s.resolver.PatchFromCatalog(ctx, s.cfg.Symbols); err != nil {
			logger.Warn("catalog fallback failed", "error", err)
		}
		refs, unresolved = s.resolver.ResolveAll(s.cfg.Symbols)
	}
	for _, sym := range unresolved {
		logger.Warn("security id not found for symbol", "symbol", sym)
	}

	if len(refs) == 0 {
		logger.Warn("no instruments resolved, staying connected without subscription")
		return
	}

	subs := make([]subscription, len(refs))
	for i, ref := range refs {
		subs[i] = subscription{
			Segment:      string(ref.Segment),
			InstrumentID: ref.SecurityID,
		}
	}

	frame, err := json.Marshal(subscribeFrame{
		Action:      "subscribe",
		Instruments: subs,
	})
	if err != nil {
		logger.Warn("subscribe marshal failed", "error", err)
		return
	}
	if err := client.Send(frame); err != nil {
		logger.Warn("subscribe send failed", "error", err)
		return
	}

	logger.Info("subscribed", "instruments", len(subs))
}

// handleMessage parses one inbound frame and routes any extracted price
// through the tick store. Malformed frames are dropped; nothing here may
// kill the receive loop.
func (s *Streamer) handleMessage(ctx context.Context, msg Message, logger *slog.Logger) {
	if msg.FrameType != websocket.TextMessage {
		logger.Debug("received binary message, parser not implemented", "len", len(msg.Data))
		return
	}

	var obj map[string]any
	if err := json.Unmarshal(msg.Data, &obj); err != nil {
		logger.Debug("failed to parse feed message as JSON", "error", err)
		return
	}

	lt, ok := ExtractLTP(obj)
	if !ok {
		return
	}

	label := lt.SecurityID
	if lt.SecurityID != "" {
		label = s.resolver.ReadableLabel(lt.SecurityID)
	}

	key := label
	if lt.SecurityID != "" {
		key = label + ":" + lt.SecurityID
	}
	if key == "" {
		key, label = "UNKNOWN", "UNKNOWN"
	}

	if !s.store.Observe(key, lt.Price) {
		return
	}

	segment := lt.Segment
	if segment == "" {
		segment = string(instrument.ClassifySegment(label))
	}
	if s.mirror != nil {
		if err := s.mirror.Upsert(ctx, key, segment, lt.Price, msg.ReceivedAt); err != nil {
			logger.Warn("ltp mirror upsert failed", "key", key, "error", err)
		}
	}

	text := fmt.Sprintf("⏱ %s — <b>%s</b> LTP: <code>%s</code>",
		time.Now().Format("2006-01-02 15:04:05"),
		label,
		strconv.FormatFloat(lt.Price, 'f', -1, 64),
	)
	s.notifier.Send(ctx, text)
	logger.Info("price change notified", "key", key, "ltp", lt.Price)
}
