package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultWSURL             = "wss://api-feed.dhan.co"
	DefaultSnapshotURL       = "https://api.dhan.co/v2/marketfeed/ltp"
	DefaultCatalogURL        = "https://images.dhan.co/api-data/api-scrip-master-detailed.csv"
	DefaultSymbols           = "NIFTY,BANKNIFTY,SENSEX,RELIANCE,TCS,TATAMOTORS"
	DefaultNotifyTimeout     = 10 * time.Second
	DefaultReconnectDelay    = 3 * time.Second
	DefaultHeartbeatInterval = 25 * time.Second
	DefaultPongTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultBufferSize        = 1000
	DefaultPollInterval      = 60 * time.Second
	DefaultMaxAttempts       = 3
	DefaultRetryBackoff      = 2 * time.Second
	DefaultNotifyEvery       = 5
	DefaultPollTimeout       = 10 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
)

func (c *Config) applyDefaults() {
	if c.Dhan.WSURL == "" {
		c.Dhan.WSURL = DefaultWSURL
	}
	if c.Dhan.SnapshotURL == "" {
		c.Dhan.SnapshotURL = DefaultSnapshotURL
	}
	if c.Dhan.CatalogURL == "" {
		c.Dhan.CatalogURL = DefaultCatalogURL
	}

	if c.Instruments.Symbols == "" {
		c.Instruments.Symbols = DefaultSymbols
	}

	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = DefaultNotifyTimeout
	}

	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Stream.HeartbeatInterval == 0 {
		c.Stream.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Stream.PongTimeout == 0 {
		c.Stream.PongTimeout = DefaultPongTimeout
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}

	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.MaxAttempts == 0 {
		c.Poller.MaxAttempts = DefaultMaxAttempts
	}
	if c.Poller.RetryBackoff == 0 {
		c.Poller.RetryBackoff = DefaultRetryBackoff
	}
	if c.Poller.NotifyEvery == 0 {
		c.Poller.NotifyEvery = DefaultNotifyEvery
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDBPort
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = DefaultDBSSLMode
		}
		if c.Database.MaxConns == 0 {
			c.Database.MaxConns = DefaultMaxConns
		}
		if c.Database.MinConns == 0 {
			c.Database.MinConns = DefaultMinConns
		}
	}
}
