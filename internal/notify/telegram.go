package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdulachik/trendbot/internal/digest"
	"golang.org/x/time/rate"
)

const telegramBaseURL = "https://api.telegram.org"

// APIError is a failed Telegram Bot API call.
type APIError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram API error (status %d): %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram API error (status %d)", e.StatusCode)
}

// TelegramNotifier sends text messages to one fixed chat.
type TelegramNotifier struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     string
	limiter    *rate.Limiter
}

// TelegramConfig holds configuration for the Telegram notifier.
type TelegramConfig struct {
	Token      string
	ChatID     string
	BaseURL    string  // Overrides https://api.telegram.org
	RatePerSec float64 // Sends per second; <= 0 means unlimited
}

// NewTelegramNotifier creates a new Telegram notifier.
func NewTelegramNotifier(cfg TelegramConfig) *TelegramNotifier {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = telegramBaseURL
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}

	return &TelegramNotifier{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		token:   cfg.Token,
		chatID:  cfg.ChatID,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// ChatID returns the destination chat.
func (t *TelegramNotifier) ChatID() string {
	return t.chatID
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send posts the notification text to the configured chat with a single
// sendMessage call. It does not retry.
func (t *TelegramNotifier) Send(ctx context.Context, notification Notification) error {
	text := notification.Text
	if text == "" {
		return ErrEmptyText
	}
	if !digest.FitsInLimit(text, digest.TelegramMaxLength) {
		text = digest.TruncateLines(text, digest.TelegramMaxLength)
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	endpoint := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token, keep it out of logs
		return fmt.Errorf("send request: %w", redactToken(err, t.token))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var result sendMessageResponse
	if jsonErr := json.Unmarshal(body, &result); jsonErr != nil && resp.StatusCode == http.StatusOK {
		return fmt.Errorf("parse response: %w", jsonErr)
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		return &APIError{
			StatusCode:  resp.StatusCode,
			ErrorCode:   result.ErrorCode,
			Description: result.Description,
		}
	}

	slog.Debug("sent telegram message", "kind", notification.Kind, "chars", len([]rune(text)))
	return nil
}

// redactToken strips the bot token from transport errors, which embed the URL.
func redactToken(err error, token string) error {
	var urlErr *url.Error
	if token != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, token, "<redacted>")
	}
	return err
}
