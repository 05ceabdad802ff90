package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Telegram
	BotToken           string
	ChatID             string
	TelegramAPIURL     string
	TelegramRatePerSec float64

	// HTTP server
	Port string

	// Trends
	TrendsSource  string // "google" or "hackernews" (default: google)
	TrendsGeo     string // Google Trends region code (default: US)
	TrendsLimit   int
	TrendsExclude []string

	// Poller
	PollInterval time.Duration

	// Journal, empty disables it
	DatabasePath string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables. The CLI loads .env
// into the environment before any command runs.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:       getEnv("BOT_TOKEN", ""),
		ChatID:         getEnv("CHAT_ID", ""),
		TelegramAPIURL: strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
		Port:           getEnv("PORT", "8080"),
		TrendsSource:   strings.ToLower(getEnv("TRENDS_SOURCE", "google")),
		TrendsGeo:      strings.ToUpper(getEnv("TRENDS_GEO", "US")),
		TrendsExclude:  splitList(os.Getenv("TRENDS_EXCLUDE")),
		DatabasePath:   os.Getenv("DATABASE_PATH"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	// DATABASE_PATH set to an empty value disables the journal
	if _, ok := os.LookupEnv("DATABASE_PATH"); !ok {
		cfg.DatabasePath = "data/trendbot.db"
	}

	var err error
	cfg.PollInterval, err = time.ParseDuration(getEnv("POLL_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}

	cfg.TrendsLimit, err = strconv.Atoi(getEnv("TRENDS_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRENDS_LIMIT: %w", err)
	}

	cfg.TelegramRatePerSec, err = strconv.ParseFloat(getEnv("TELEGRAM_RATE_PER_SEC", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_RATE_PER_SEC: %w", err)
	}

	return cfg, nil
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.TrendsLimit <= 0 {
		return fmt.Errorf("TRENDS_LIMIT must be positive")
	}
	switch c.TrendsSource {
	case "google", "hackernews":
	default:
		return fmt.Errorf("invalid TRENDS_SOURCE: %s (must be 'google' or 'hackernews')", c.TrendsSource)
	}
	return nil
}

// ValidateForSending checks configuration needed to talk to Telegram.
func (c *Config) ValidateForSending() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required for sending")
	}
	if c.ChatID == "" {
		return fmt.Errorf("CHAT_ID is required for sending")
	}
	if c.TelegramRatePerSec <= 0 {
		return fmt.Errorf("TELEGRAM_RATE_PER_SEC must be positive")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForSending(); err != nil {
		return err
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

// ValidateForJournal checks configuration needed by the history commands.
func (c *Config) ValidateForJournal() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// JournalEnabled reports whether cycle outcomes are persisted.
func (c *Config) JournalEnabled() bool {
	return c.DatabasePath != ""
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
