package app

import (
	"context"
	"fmt"

	"github.com/abdulachik/trendbot/internal/config"
	"github.com/abdulachik/trendbot/internal/db"
	"github.com/abdulachik/trendbot/internal/monitor"
	"github.com/abdulachik/trendbot/internal/notify"
	"github.com/abdulachik/trendbot/internal/scheduler"
	"github.com/abdulachik/trendbot/internal/server"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Store    *db.Store // nil when the journal is disabled
	Health   *scheduler.Health
	Monitor  monitor.Monitor
	Notifier notify.Notifier
	Poller   *scheduler.Poller
	Server   *server.Server
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		Health: scheduler.NewHealth(),
	}

	if cfg.JournalEnabled() {
		store, err := db.NewStore(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}

		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.Store = store
	}

	mon, err := NewMonitor(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Monitor = mon

	var notifier notify.Notifier = notify.NewTelegramNotifier(notify.TelegramConfig{
		Token:      cfg.BotToken,
		ChatID:     cfg.ChatID,
		BaseURL:    cfg.TelegramAPIURL,
		RatePerSec: cfg.TelegramRatePerSec,
	})
	var sinks []scheduler.Sink
	if a.Store != nil {
		notifier = notify.NewRecording(notifier, a.Store, cfg.ChatID)
		sinks = append(sinks, scheduler.JournalSink(a.Store))
	}
	a.Notifier = notifier

	a.Poller = scheduler.New(scheduler.Config{
		Monitor: mon,
		Filter: monitor.NewFilter(monitor.FilterConfig{
			ExcludeTerms: cfg.TrendsExclude,
		}),
		Notifier: notifier,
		Interval: cfg.PollInterval,
		Limit:    cfg.TrendsLimit,
		Sinks:    sinks,
		Health:   a.Health,
	})

	a.Server = server.New(server.Config{
		Addr:     cfg.ListenAddr(),
		Notifier: notifier,
		Health:   a.Health,
	})

	return a, nil
}

// NewMonitor creates the trend source selected by TRENDS_SOURCE.
func NewMonitor(cfg *config.Config) (monitor.Monitor, error) {
	switch cfg.TrendsSource {
	case "", "google":
		return monitor.NewGoogleTrendsMonitor(monitor.GoogleTrendsConfig{Geo: cfg.TrendsGeo}), nil
	case "hackernews":
		// Over-fetch so filtered stories can be replaced
		return monitor.NewHackerNewsMonitor(monitor.HackerNewsConfig{MaxStories: 3 * cfg.TrendsLimit}), nil
	default:
		return nil, fmt.Errorf("unknown trend source %q", cfg.TrendsSource)
	}
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
