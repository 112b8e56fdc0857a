package feed

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pilumvli199/DT6/internal/instrument"
	"github.com/pilumvli199/DT6/internal/notify"
	"github.com/pilumvli199/DT6/internal/tick"
)

// captureNotifier records sent messages.
type captureNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (c *captureNotifier) Send(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}

func newTestStreamer(n notify.Notifier) (*Streamer, *tick.Store) {
	store := tick.NewStore()
	resolver := instrument.NewResolver(nil, nil)
	s := NewStreamer(StreamerConfig{
		Symbols: []string{"RELIANCE", "NIFTY"},
	}, resolver, store, n, nil, nil)
	return s, store
}

func textMsg(raw string) Message {
	return Message{FrameType: websocket.TextMessage, Data: []byte(raw), ReceivedAt: time.Now()}
}

func TestHandleMessage_ChangeGatedNotifications(t *testing.T) {
	n := &captureNotifier{}
	s, _ := newTestStreamer(n)
	ctx := context.Background()

	// 2800.0, 2800.0 again, then 2805.5: exactly 2 notifications.
	s.handleMessage(ctx, textMsg(`{"data":{"NSE_EQ":{"2885":{"last_price":2800.0}}}}`), s.logger)
	s.handleMessage(ctx, textMsg(`{"data":{"NSE_EQ":{"2885":{"last_price":2800.0}}}}`), s.logger)
	s.handleMessage(ctx, textMsg(`{"data":{"NSE_EQ":{"2885":{"last_price":2805.5}}}}`), s.logger)

	if got := n.count(); got != 2 {
		t.Errorf("notifications = %d, want 2", got)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, text := range n.texts {
		if !strings.Contains(text, "<b>RELIANCE</b>") || !strings.Contains(text, "LTP:") {
			t.Errorf("notification %q missing readable label or LTP marker", text)
		}
	}
}

func TestHandleMessage_MalformedInputsLeaveStoreUntouched(t *testing.T) {
	n := &captureNotifier{}
	s, store := newTestStreamer(n)
	ctx := context.Background()

	// Non-JSON text.
	s.handleMessage(ctx, textMsg(`not json at all`), s.logger)
	// Binary frame.
	s.handleMessage(ctx, Message{FrameType: websocket.BinaryMessage, Data: []byte{0x01, 0x02}}, s.logger)
	// Well-formed JSON with no price field.
	s.handleMessage(ctx, textMsg(`{"type":"ack","status":"subscribed"}`), s.logger)

	if store.Len() != 0 {
		t.Errorf("store.Len() = %d, want 0", store.Len())
	}
	if n.count() != 0 {
		t.Errorf("notifications = %d, want 0", n.count())
	}
}

func TestHandleMessage_UnknownIDUsesRawIdentifier(t *testing.T) {
	n := &captureNotifier{}
	s, store := newTestStreamer(n)

	s.handleMessage(context.Background(), textMsg(`{"data":{"NSE_EQ":{"99999":{"ltp":10}}}}`), s.logger)

	if _, ok := store.Last("99999:99999"); !ok {
		t.Error("store missing key 99999:99999 for unmapped security id")
	}
	if n.count() != 1 {
		t.Errorf("notifications = %d, want 1", n.count())
	}
}

func TestHandleMessage_MirrorReceivesChanges(t *testing.T) {
	var mu sync.Mutex
	type upsert struct {
		key     string
		segment string
		price   float64
	}
	var upserts []upsert

	mirror := mirrorFunc(func(ctx context.Context, key, segment string, price float64, observedAt time.Time) error {
		mu.Lock()
		defer mu.Unlock()
		upserts = append(upserts, upsert{key, segment, price})
		return nil
	})

	store := tick.NewStore()
	resolver := instrument.NewResolver(nil, nil)
	s := NewStreamer(StreamerConfig{}, resolver, store, notify.Func(func(context.Context, string) {}), mirror, nil)

	ctx := context.Background()
	s.handleMessage(ctx, textMsg(`{"data":{"NSE_INDEX":{"13":{"last_price":24100}}}}`), s.logger)
	s.handleMessage(ctx, textMsg(`{"data":{"NSE_INDEX":{"13":{"last_price":24100}}}}`), s.logger)

	mu.Lock()
	defer mu.Unlock()
	if len(upserts) != 1 {
		t.Fatalf("upserts = %d, want 1 (unchanged repeat must not mirror)", len(upserts))
	}
	if upserts[0].key != "NIFTY 50:13" && upserts[0].key != "NIFTY:13" {
		t.Errorf("key = %q, want a NIFTY label with id 13", upserts[0].key)
	}
	if upserts[0].segment != "NSE_INDEX" {
		t.Errorf("segment = %q, want NSE_INDEX", upserts[0].segment)
	}
	if upserts[0].price != 24100 {
		t.Errorf("price = %v, want 24100", upserts[0].price)
	}
}

// mirrorFunc adapts a function to the Mirror interface.
type mirrorFunc func(ctx context.Context, key, segment string, price float64, observedAt time.Time) error

func (f mirrorFunc) Upsert(ctx context.Context, key, segment string, price float64, observedAt time.Time) error {
	return f(ctx, key, segment, price, observedAt)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	n := &captureNotifier{}
	store := tick.NewStore()
	resolver := instrument.NewResolver(nil, nil)
	s := NewStreamer(StreamerConfig{
		URL:               "ws://127.0.0.1:1", // nothing listening, connect fails fast
		Symbols:           []string{"RELIANCE"},
		ReconnectDelay:    10 * time.Millisecond,
		HeartbeatInterval: time.Second,
		PongTimeout:       time.Second,
		WriteTimeout:      time.Second,
		BufferSize:        8,
	}, resolver, store, n, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let it spin through a few failed connects, then stop it.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
