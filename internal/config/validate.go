package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
// Missing credentials are deliberately not an error here: the process can
// run in a degraded observe-only mode, and main warns about them instead.
func (c *Config) Validate() error {
	if c.Dhan.WSURL == "" {
		return errors.New("dhan.ws_url is required")
	}
	if c.Dhan.SnapshotURL == "" {
		return errors.New("dhan.snapshot_url is required")
	}

	if len(c.Instruments.List()) == 0 {
		return errors.New("instruments.symbols must contain at least one symbol")
	}

	if c.Stream.ReconnectDelay < 0 {
		return errors.New("stream.reconnect_delay must be >= 0")
	}
	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}
	if c.Poller.MaxAttempts < 1 {
		return errors.New("poller.max_attempts must be >= 1")
	}
	if c.Poller.NotifyEvery < 1 {
		return errors.New("poller.notify_every must be >= 1")
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	return nil
}

// MissingCredentials lists credential fields that are empty. The caller
// logs these as warnings; the feed and sink degrade to no-ops without them.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Dhan.ClientID == "" {
		missing = append(missing, "dhan.client_id")
	}
	if c.Dhan.AccessToken == "" {
		missing = append(missing, "dhan.access_token")
	}
	if c.Telegram.BotToken == "" {
		missing = append(missing, "telegram.bot_token")
	}
	if c.Telegram.ChatID == "" {
		missing = append(missing, "telegram.chat_id")
	}
	return missing
}

func (db *DatabaseConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
