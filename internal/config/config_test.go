package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
dhan:
  ws_url: wss://feed.example.test/marketfeed
  snapshot_url: https://api.example.test/v2/marketfeed/ltp
  client_id: client-1
  access_token: token-1
instruments:
  symbols: "NIFTY, RELIANCE ,TCS"
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Dhan.WSURL != "wss://feed.example.test/marketfeed" {
		t.Errorf("Dhan.WSURL = %q, want %q", cfg.Dhan.WSURL, "wss://feed.example.test/marketfeed")
	}
	if cfg.Dhan.ClientID != "client-1" {
		t.Errorf("Dhan.ClientID = %q, want %q", cfg.Dhan.ClientID, "client-1")
	}

	symbols := cfg.Instruments.List()
	want := []string{"NIFTY", "RELIANCE", "TCS"}
	if len(symbols) != len(want) {
		t.Fatalf("Instruments.List() = %v, want %v", symbols, want)
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbols[%d] = %q, want %q", i, symbols[i], want[i])
		}
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_ACCESS_TOKEN", "secret123")

	yaml := `
dhan:
  access_token: ${TEST_ACCESS_TOKEN}
instruments:
  symbols: NIFTY
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Dhan.AccessToken != "secret123" {
		t.Errorf("Dhan.AccessToken = %q, want %q", cfg.Dhan.AccessToken, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
dhan:
  client_id: client-1
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Dhan.WSURL != DefaultWSURL {
		t.Errorf("Dhan.WSURL = %q, want default %q", cfg.Dhan.WSURL, DefaultWSURL)
	}
	if cfg.Dhan.SnapshotURL != DefaultSnapshotURL {
		t.Errorf("Dhan.SnapshotURL = %q, want default %q", cfg.Dhan.SnapshotURL, DefaultSnapshotURL)
	}
	if cfg.Poller.Interval != 60*time.Second {
		t.Errorf("Poller.Interval = %v, want 60s", cfg.Poller.Interval)
	}
	if cfg.Poller.NotifyEvery != 5 {
		t.Errorf("Poller.NotifyEvery = %d, want 5", cfg.Poller.NotifyEvery)
	}
	if cfg.Stream.ReconnectDelay != 3*time.Second {
		t.Errorf("Stream.ReconnectDelay = %v, want 3s", cfg.Stream.ReconnectDelay)
	}
	if cfg.Stream.HeartbeatInterval != 25*time.Second {
		t.Errorf("Stream.HeartbeatInterval = %v, want 25s", cfg.Stream.HeartbeatInterval)
	}
	if len(cfg.Instruments.List()) == 0 {
		t.Error("Instruments.List() is empty, want default symbols")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing ws url", func(c *Config) { c.Dhan.WSURL = "" }, true},
		{"missing snapshot url", func(c *Config) { c.Dhan.SnapshotURL = "" }, true},
		{"no symbols", func(c *Config) { c.Instruments.Symbols = " , ," }, true},
		{"zero poll interval", func(c *Config) { c.Poller.Interval = 0 }, true},
		{"zero notify every", func(c *Config) { c.Poller.NotifyEvery = 0 }, true},
		{"db missing user", func(c *Config) {
			c.Database.Host = "localhost"
			c.Database.Name = "ltp"
			c.Database.Password = "pw"
			c.Database.MaxConns = 4
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPollerCycleBudget(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	// 3 attempts x 10s requests plus 2s and 4s backoff sleeps.
	if got := cfg.Poller.CycleBudget(); got != 36*time.Second {
		t.Errorf("CycleBudget() = %v, want 36s", got)
	}

	cfg.Poller.MaxAttempts = 1
	if got := cfg.Poller.CycleBudget(); got != 10*time.Second {
		t.Errorf("CycleBudget() with one attempt = %v, want 10s", got)
	}
}

func TestMissingCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	missing := cfg.MissingCredentials()
	if len(missing) != 4 {
		t.Errorf("MissingCredentials() = %v, want 4 entries", missing)
	}

	cfg.Dhan.ClientID = "c"
	cfg.Dhan.AccessToken = "t"
	cfg.Telegram.BotToken = "b"
	cfg.Telegram.ChatID = "123"
	if missing := cfg.MissingCredentials(); len(missing) != 0 {
		t.Errorf("MissingCredentials() = %v, want none", missing)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
