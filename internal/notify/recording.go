package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/abdulachik/trendbot/internal/db"
)

// DeliveryJournal persists delivery attempts.
type DeliveryJournal interface {
	CreateDelivery(ctx context.Context, d db.Delivery) (db.Delivery, error)
}

// Recording wraps a Notifier and journals every attempt, successful or not.
type Recording struct {
	next    Notifier
	journal DeliveryJournal
	chatID  string
}

// NewRecording creates a journaling notifier.
func NewRecording(next Notifier, journal DeliveryJournal, chatID string) *Recording {
	return &Recording{
		next:    next,
		journal: journal,
		chatID:  chatID,
	}
}

// Send delegates to the wrapped notifier and records the outcome.
// The wrapped notifier's error is returned unchanged.
func (r *Recording) Send(ctx context.Context, notification Notification) error {
	start := time.Now()
	err := r.next.Send(ctx, notification)

	status := db.StatusOK
	if err != nil {
		status = db.StatusSendError
	}

	// Record even when ctx was cancelled mid-send
	_, jerr := r.journal.CreateDelivery(context.WithoutCancel(ctx), db.Delivery{
		Kind:       notification.Kind,
		ChatID:     r.chatID,
		Text:       notification.Text,
		Status:     status,
		Error:      db.NullError(err),
		CreatedAt:  start,
		DurationMs: time.Since(start).Milliseconds(),
	})
	if jerr != nil {
		slog.Warn("failed to record delivery", "kind", notification.Kind, "error", jerr)
	}

	return err
}
