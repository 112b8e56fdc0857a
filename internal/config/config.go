package config

import (
	"strings"
	"time"
)

// Config is the root configuration for a streamer instance.
type Config struct {
	Dhan        DhanConfig     `yaml:"dhan"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Instruments Instruments    `yaml:"instruments"`
	Stream      StreamConfig   `yaml:"stream"`
	Poller      PollerConfig   `yaml:"poller"`
	Database    DatabaseConfig `yaml:"database"`
}

// DhanConfig holds Dhan API endpoints and credentials.
type DhanConfig struct {
	WSURL       string `yaml:"ws_url"`
	SnapshotURL string `yaml:"snapshot_url"`
	CatalogURL  string `yaml:"catalog_url"` // scrip-master CSV for the resolver fallback
	ClientID    string `yaml:"client_id"`
	AccessToken string `yaml:"access_token"`
}

// TelegramConfig holds the notification sink settings.
type TelegramConfig struct {
	BotToken string        `yaml:"bot_token"`
	ChatID   string        `yaml:"chat_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Instruments holds the tracked symbol set.
type Instruments struct {
	// Symbols is a comma-separated list, e.g. "NIFTY,BANKNIFTY,RELIANCE".
	Symbols string `yaml:"symbols"`
}

// List returns the trimmed, non-empty symbols.
func (i Instruments) List() []string {
	parts := strings.Split(i.Symbols, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// StreamConfig holds WebSocket client settings.
type StreamConfig struct {
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	PongTimeout       time.Duration `yaml:"pong_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	BufferSize        int           `yaml:"buffer_size"`
}

// PollerConfig holds REST snapshot poller settings.
type PollerConfig struct {
	Interval     time.Duration `yaml:"interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	// NotifyEvery throttles failure diagnostics to every Nth consecutive
	// failed cycle.
	NotifyEvery int           `yaml:"notify_every"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CycleBudget returns the context budget for one poll cycle: enough for
// every snapshot attempt to run out its full request timeout plus the
// linear backoff sleeps between attempts. A cycle capped below this
// would cut the retry schedule short whenever the endpoint hangs.
func (p PollerConfig) CycleBudget() time.Duration {
	budget := time.Duration(p.MaxAttempts) * p.Timeout
	for i := 1; i < p.MaxAttempts; i++ {
		budget += time.Duration(i) * p.RetryBackoff
	}
	return budget
}

// DatabaseConfig holds the optional last-LTP mirror connection.
// The mirror is disabled when Host is empty.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether the mirror should be connected.
func (db DatabaseConfig) Enabled() bool {
	return db.Host != ""
}
