package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/trendbot/internal/digest"
	"github.com/abdulachik/trendbot/internal/monitor"
	"github.com/abdulachik/trendbot/internal/notify"
	"github.com/google/uuid"
)

const (
	defaultInterval = time.Hour
	defaultLimit    = 10
)

// Poller fetches trends on a fixed delay and relays them to the notifier.
type Poller struct {
	monitor  monitor.Monitor
	filter   *monitor.Filter
	notifier notify.Notifier
	interval time.Duration
	limit    int
	sinks    []Sink
	health   *Health
}

// Config holds poller configuration.
type Config struct {
	Monitor  monitor.Monitor
	Filter   *monitor.Filter // nil passes everything
	Notifier notify.Notifier
	Interval time.Duration // Delay between the end of one cycle and the start of the next
	Limit    int           // Trends per message
	Sinks    []Sink
	Health   *Health // nil creates a private tracker
}

// New creates a new poller.
func New(cfg Config) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	filter := cfg.Filter
	if filter == nil {
		filter = monitor.NewFilter(monitor.FilterConfig{})
	}

	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}

	return &Poller{
		monitor:  cfg.Monitor,
		filter:   filter,
		notifier: cfg.Notifier,
		interval: interval,
		limit:    limit,
		sinks:    cfg.Sinks,
		health:   health,
	}
}

// Run executes a cycle immediately and then one cycle per interval until ctx
// is cancelled. Cycle failures never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("starting poller",
		"source", p.monitor.Name(),
		"interval", p.interval,
		"limit", p.limit,
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.RunCycle(ctx)

		// Fixed delay: the wait starts after the cycle finished
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("poller shutting down")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunCycle performs one fetch-format-send pass and reports its outcome to
// the health tracker and every sink.
func (p *Poller) RunCycle(ctx context.Context) Outcome {
	out := Outcome{
		ID:        uuid.NewString(),
		Source:    p.monitor.Name(),
		StartedAt: time.Now(),
	}

	trends, err := p.collect(ctx)
	if err != nil {
		out.Status = StatusFetchError
		out.Err = err
		p.health.SetUnhealthy(ComponentTrends, err)
		slog.Error("trend fetch failed, skipping cycle", "source", out.Source, "error", err)
	} else {
		p.health.SetHealthy(ComponentTrends, fmt.Sprintf("fetched %d trends", len(trends)))
		out.Items = len(trends)
		out.Message = digest.FormatTrends(trends)
		if out.Items == 0 {
			slog.Warn("no trends returned, sending header only", "source", out.Source)
		}

		if err := p.notifier.Send(ctx, notify.Notification{Kind: notify.KindDigest, Text: out.Message}); err != nil {
			out.Status = StatusSendError
			out.Err = err
			p.health.SetUnhealthy(ComponentTelegram, err)
			slog.Error("failed to send trends", "items", out.Items, "error", err)
		} else {
			out.Status = StatusOK
			if out.Items == 0 {
				out.Status = StatusEmpty
			}
			p.health.SetHealthy(ComponentTelegram, "last send delivered")
			slog.Info("sent trends", "items", out.Items)
		}
	}

	out.Duration = time.Since(out.StartedAt)
	for _, sink := range p.sinks {
		sink.Observe(ctx, out)
	}

	return out
}

// collect fetches, filters and cuts the trend list. A panic in the monitor is
// reported as an error so the loop survives it.
func (p *Poller) collect(ctx context.Context) (trends []monitor.Trend, err error) {
	defer func() {
		if r := recover(); r != nil {
			trends = nil
			err = fmt.Errorf("trend source panicked: %v", r)
		}
	}()

	trends, err = p.monitor.FetchTrends(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s trends: %w", p.monitor.Name(), err)
	}

	trends = p.filter.FilterTrends(trends)
	return monitor.Top(trends, p.limit), nil
}

// Health returns the health tracker.
func (p *Poller) Health() *Health {
	return p.health
}

// Interval returns the delay between cycles.
func (p *Poller) Interval() time.Duration {
	return p.interval
}
