// Package notify delivers formatted text to the downstream messaging
// sink. Delivery is best-effort: failures are logged, never propagated.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier sends a text message to the configured sink.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// Func is a function adapter for Notifier.
type Func func(ctx context.Context, text string)

func (f Func) Send(ctx context.Context, text string) { f(ctx, text) }

// Telegram sends messages via the Bot API sendMessage method with HTML
// parse mode.
type Telegram struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Telegram notifier.
type Option func(*Telegram)

// WithBaseURL overrides the Bot API base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(t *Telegram) {
		t.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithTimeout sets the per-send timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Telegram) {
		t.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Telegram) {
		t.logger = logger
	}
}

// NewTelegram creates a Telegram notifier. An empty token or chat id
// yields a notifier whose Send logs locally instead of sending.
func NewTelegram(botToken, chatID string, opts ...Option) *Telegram {
	t := &Telegram{
		baseURL:  "https://api.telegram.org",
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Configured reports whether the sink has credentials.
func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

// Send delivers text to the configured chat. Errors are logged and
// swallowed so a sink fault can never stall or kill a caller's loop.
func (t *Telegram) Send(ctx context.Context, text string) {
	if !t.Configured() {
		t.logger.Debug("telegram sink not configured, dropping message", "text", text)
		return
	}

	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		t.logger.Warn("telegram request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("telegram send failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Warn("telegram send rejected",
			"status", resp.StatusCode,
			"body", string(body),
		)
	}
}
