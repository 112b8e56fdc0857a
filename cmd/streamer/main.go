package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pilumvli199/DT6/internal/api"
	"github.com/pilumvli199/DT6/internal/config"
	"github.com/pilumvli199/DT6/internal/database"
	"github.com/pilumvli199/DT6/internal/feed"
	"github.com/pilumvli199/DT6/internal/instrument"
	"github.com/pilumvli199/DT6/internal/notify"
	"github.com/pilumvli199/DT6/internal/poller"
	"github.com/pilumvli199/DT6/internal/tick"
	"github.com/pilumvli199/DT6/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/streamer.yaml", "path to config file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Local development convenience; absent .env is fine.
	godotenv.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ltp streamer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.Warn("some credentials are not set, running degraded", "missing", missing)
	}

	symbols := cfg.Instruments.List()
	logger.Info("configuration loaded",
		"symbols", symbols,
		"ws_url", cfg.Dhan.WSURL,
		"poll_interval", cfg.Poller.Interval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	apiClient := api.NewClient(
		cfg.Dhan.SnapshotURL,
		cfg.Dhan.CatalogURL,
		cfg.Dhan.ClientID,
		cfg.Dhan.AccessToken,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Poller.Timeout),
		api.WithRetries(cfg.Poller.MaxAttempts, cfg.Poller.RetryBackoff),
	)

	resolver := instrument.NewResolver(apiClient, logger)
	store := tick.NewStore()

	notifier := notify.NewTelegram(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		notify.WithTimeout(cfg.Telegram.Timeout),
		notify.WithLogger(logger),
	)
	if !notifier.Configured() {
		logger.Warn("telegram sink not configured, notifications will be logged only")
	}

	var mirror *database.LTPMirror
	if cfg.Database.Enabled() {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to mirror database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		mirror, err = database.NewLTPMirror(ctx, pool)
		if err != nil {
			logger.Error("failed to prepare ltp mirror", "error", err)
			os.Exit(1)
		}
		logger.Info("ltp mirror enabled", "host", cfg.Database.Host, "database", cfg.Database.Name)
	}

	streamer := feed.NewStreamer(feed.StreamerConfig{
		URL:               cfg.Dhan.WSURL,
		ClientID:          cfg.Dhan.ClientID,
		AccessToken:       cfg.Dhan.AccessToken,
		Symbols:           symbols,
		ReconnectDelay:    cfg.Stream.ReconnectDelay,
		HeartbeatInterval: cfg.Stream.HeartbeatInterval,
		PongTimeout:       cfg.Stream.PongTimeout,
		WriteTimeout:      cfg.Stream.WriteTimeout,
		BufferSize:        cfg.Stream.BufferSize,
	}, resolver, store, notifier, mirrorOrNil(mirror), logger.With("component", "stream"))

	snapshotPoller := poller.New(poller.Config{
		Symbols:     symbols,
		Interval:    cfg.Poller.Interval,
		Timeout:     cfg.Poller.CycleBudget(),
		NotifyEvery: cfg.Poller.NotifyEvery,
	}, apiClient, resolver, store, notifier, pollerMirrorOrNil(mirror), logger.With("component", "poller"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return streamer.Run(gctx) })
	g.Go(func() error { return snapshotPoller.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("streamer exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// A nil *LTPMirror stored in a non-nil interface would dodge the
// mirror == nil guards downstream, so convert explicitly.
func mirrorOrNil(m *database.LTPMirror) feed.Mirror {
	if m == nil {
		return nil
	}
	return m
}

func pollerMirrorOrNil(m *database.LTPMirror) poller.Mirror {
	if m == nil {
		return nil
	}
	return m
}
