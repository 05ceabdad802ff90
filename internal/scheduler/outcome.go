package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/abdulachik/trendbot/internal/db"
)

// Status classifies a poll cycle. StatusEmpty is a delivered message that
// carried no trends.
type Status string

const (
	StatusOK         Status = db.StatusOK
	StatusEmpty      Status = db.StatusEmpty
	StatusFetchError Status = db.StatusFetchError
	StatusSendError  Status = db.StatusSendError
)

// Outcome is the typed result of one poll cycle.
type Outcome struct {
	ID        string
	Source    string
	Status    Status
	Items     int
	Message   string
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Sink receives every cycle outcome.
type Sink interface {
	Observe(ctx context.Context, outcome Outcome)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, outcome Outcome)

// Observe calls f.
func (f SinkFunc) Observe(ctx context.Context, outcome Outcome) {
	f(ctx, outcome)
}

// CycleJournal persists cycle outcomes.
type CycleJournal interface {
	CreateCycle(ctx context.Context, c db.Cycle) (db.Cycle, error)
}

// JournalSink writes outcomes to the journal. Write failures are logged.
func JournalSink(journal CycleJournal) Sink {
	return SinkFunc(func(ctx context.Context, o Outcome) {
		_, err := journal.CreateCycle(context.WithoutCancel(ctx), db.Cycle{
			ID:         o.ID,
			Source:     o.Source,
			Status:     string(o.Status),
			Items:      int64(o.Items),
			Error:      db.NullError(o.Err),
			StartedAt:  o.StartedAt,
			DurationMs: o.Duration.Milliseconds(),
		})
		if err != nil {
			slog.Warn("failed to record cycle", "cycle", o.ID, "error", err)
		}
	})
}
