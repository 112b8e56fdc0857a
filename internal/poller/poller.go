package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pilumvli199/DT6/internal/api"
	"github.com/pilumvli199/DT6/internal/feed"
	"github.com/pilumvli199/DT6/internal/instrument"
	"github.com/pilumvli199/DT6/internal/notify"
	"github.com/pilumvli199/DT6/internal/tick"
)

// SnapshotClient fetches LTP snapshots. Implemented by api.Client.
type SnapshotClient interface {
	LTPSnapshot(ctx context.Context, grouped map[instrument.Segment][]int) (*api.LTPResponse, error)
}

// Mirror persists the latest observed price per key. Nil disables
// mirroring.
type Mirror interface {
	Upsert(ctx context.Context, key, segment string, price float64, observedAt time.Time) error
}

// Config holds poller configuration.
type Config struct {
	Symbols  []string
	Interval time.Duration // poll interval (default: 60s)
	// Timeout bounds one whole cycle. It must cover the snapshot client's
	// full retry schedule (see config.PollerConfig.CycleBudget), or slow
	// failures exhaust the cycle before the later attempts run.
	Timeout time.Duration
	// NotifyEvery throttles failure diagnostics to every Nth consecutive
	// failed cycle (default: 5).
	NotifyEvery int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		NotifyEvery: 5,
	}
}

// Poller periodically fetches LTP snapshots via the REST API.
type Poller struct {
	cfg      Config
	client   SnapshotClient
	resolver *instrument.Resolver
	store    *tick.Store
	notifier notify.Notifier
	mirror   Mirror
	logger   *slog.Logger

	// Consecutive failed cycles. Owned by the run loop, no locking needed.
	failures     int
	catalogTried bool
}

// New creates a new Poller. mirror may be nil.
func New(cfg Config, client SnapshotClient, resolver *instrument.Resolver, store *tick.Store, notifier notify.Notifier, mirror Mirror, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:      cfg,
		client:   client,
		resolver: resolver,
		store:    store,
		notifier: notifier,
		mirror:   mirror,
		logger:   logger,
	}
}

// Run executes poll cycles until ctx is cancelled. The first cycle runs
// immediately.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("snapshot poller started",
		"interval", p.cfg.Interval,
		"symbols", len(p.cfg.Symbols),
	)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("snapshot poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce runs a single cycle: resolve, fetch, format, notify.
func (p *Poller) pollOnce(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	grouped := p.resolver.GroupBySegment(p.cfg.Symbols)
	if len(grouped) == 0 && !p.catalogTried {
		p.catalogTried = true
		if err := p.resolver.PatchFromCatalog(cycleCtx, p.cfg.Symbols); err != nil {
			p.logger.Warn("catalog fallback failed", "error", err)
		}
		grouped = p.resolver.GroupBySegment(p.cfg.Symbols)
	}

	resp, err := p.client.LTPSnapshot(cycleCtx, grouped)
	if err != nil || resp == nil {
		p.recordFailure(ctx, err)
		return
	}

	lines := p.routeSnapshot(ctx, resp)

	if p.failures > 0 {
		p.notifier.Send(ctx, fmt.Sprintf("✅ Snapshot polling recovered after %d failed cycles", p.failures))
		p.logger.Info("snapshot polling recovered", "failed_cycles", p.failures)
		p.failures = 0
	}

	text := "📊 LTP snapshot " + time.Now().Format("15:04:05")
	if len(lines) == 0 {
		text += "\nNo usable LTP data in snapshot response"
	} else {
		text += "\n" + strings.Join(lines, "\n")
	}
	p.notifier.Send(ctx, text)

	p.logger.Info("poll cycle complete", "instruments", len(lines))
}

// recordFailure counts a failed cycle and emits a throttled diagnostic:
// cycle 1, then every NotifyEvery-th consecutive failure after it.
func (p *Poller) recordFailure(ctx context.Context, err error) {
	p.failures++
	p.logger.Warn("poll cycle failed",
		"consecutive", p.failures,
		"error", err,
	)

	if p.failures%p.cfg.NotifyEvery == 1 || p.cfg.NotifyEvery == 1 {
		p.notifier.Send(ctx, fmt.Sprintf("⚠️ Snapshot poll failing (%d consecutive)", p.failures))
	}
}

// routeSnapshot walks every segment bucket in the response, updates the
// tick store and mirror, and returns one formatted line per instrument
// with a usable price. Lines are sorted for stable output.
func (p *Poller) routeSnapshot(ctx context.Context, resp *api.LTPResponse) []string {
	var lines []string

	segments := make([]string, 0, len(resp.Data))
	for seg := range resp.Data {
		segments = append(segments, seg)
	}
	sort.Strings(segments)

	for _, segment := range segments {
		bucket := resp.Data[segment]

		ids := make([]string, 0, len(bucket))
		for id := range bucket {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			price, ok := feed.PriceFromRecord(bucket[id])
			if !ok {
				continue
			}

			label := p.resolver.ReadableLabel(id)
			key := label + ":" + id

			changed := p.store.Observe(key, price)
			if changed && p.mirror != nil {
				if err := p.mirror.Upsert(ctx, key, segment, price, time.Now()); err != nil {
					p.logger.Warn("ltp mirror upsert failed", "key", key, "error", err)
				}
			}

			lines = append(lines, fmt.Sprintf("%s LTP: %s (%s)",
				label,
				strconv.FormatFloat(price, 'f', -1, 64),
				segment,
			))
		}
	}

	return lines
}
