package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdulachik/trendbot/internal/config"
	"github.com/abdulachik/trendbot/internal/monitor"
	"github.com/abdulachik/trendbot/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		BotToken:           "123:abc",
		ChatID:             "42",
		TelegramAPIURL:     "http://127.0.0.1:1",
		TelegramRatePerSec: 1,
		Port:               "8080",
		TrendsSource:       "google",
		TrendsGeo:          "US",
		TrendsLimit:        10,
		PollInterval:       time.Hour,
	}
}

func TestNew_WithoutJournal(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Store)
	assert.IsType(t, &notify.TelegramNotifier{}, a.Notifier)
	assert.NotNil(t, a.Poller)
	assert.NotNil(t, a.Server)
	assert.Same(t, a.Health, a.Poller.Health())
	assert.Equal(t, time.Hour, a.Poller.Interval())
}

func TestNew_WithJournal(t *testing.T) {
	cfg := testConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "trendbot.db")

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Store)
	assert.IsType(t, &notify.Recording{}, a.Notifier)

	cycles, err := a.Store.ListRecentCycles(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestNewMonitor(t *testing.T) {
	tests := []struct {
		source   string
		wantType monitor.Monitor
		wantErr  bool
	}{
		{"google", &monitor.GoogleTrendsMonitor{}, false},
		{"", &monitor.GoogleTrendsMonitor{}, false},
		{"hackernews", &monitor.HackerNewsMonitor{}, false},
		{"twitter", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			cfg := testConfig()
			cfg.TrendsSource = tt.source

			mon, err := NewMonitor(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, mon)
		})
	}
}
