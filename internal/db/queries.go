package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cycle statuses and delivery statuses share these values.
const (
	StatusOK         = "ok"
	StatusEmpty      = "empty"
	StatusFetchError = "fetch_error"
	StatusSendError  = "send_error"
)

// Cycle is one recorded poll cycle.
type Cycle struct {
	ID         string         `db:"id"`
	Source     string         `db:"source"`
	Status     string         `db:"status"`
	Items      int64          `db:"items"`
	Error      sql.NullString `db:"error"`
	StartedAt  time.Time      `db:"started_at"`
	DurationMs int64          `db:"duration_ms"`
}

// Delivery is one recorded outbound message attempt.
type Delivery struct {
	ID         string         `db:"id"`
	Kind       string         `db:"kind"`
	ChatID     string         `db:"chat_id"`
	Text       string         `db:"text"`
	Status     string         `db:"status"`
	Error      sql.NullString `db:"error"`
	CreatedAt  time.Time      `db:"created_at"`
	DurationMs int64          `db:"duration_ms"`
}

// StatusCount is a per-status row count.
type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// NullError converts an error into a nullable column value.
func NullError(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}

// CreateCycle inserts a cycle, assigning an ID and timestamp when missing.
func (s *Store) CreateCycle(ctx context.Context, c Cycle) (Cycle, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now()
	}
	c.StartedAt = c.StartedAt.UTC()

	_, err := s.ExecContext(ctx, `
		INSERT INTO cycles (id, source, status, items, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Source, c.Status, c.Items, c.Error, c.StartedAt, c.DurationMs,
	)
	if err != nil {
		return Cycle{}, fmt.Errorf("insert cycle: %w", err)
	}
	return c, nil
}

// ListRecentCycles returns the newest cycles first.
func (s *Store) ListRecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	var cycles []Cycle
	err := s.SelectContext(ctx, &cycles, `
		SELECT id, source, status, items, error, started_at, duration_ms
		FROM cycles
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// CountCyclesByStatus groups all recorded cycles by status.
func (s *Store) CountCyclesByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := s.SelectContext(ctx, &counts, `
		SELECT status, COUNT(*) AS count
		FROM cycles
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("count cycles: %w", err)
	}
	return counts, nil
}

// CreateDelivery inserts a delivery, assigning an ID and timestamp when missing.
func (s *Store) CreateDelivery(ctx context.Context, d Delivery) (Delivery, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.CreatedAt = d.CreatedAt.UTC()

	_, err := s.ExecContext(ctx, `
		INSERT INTO deliveries (id, kind, chat_id, text, status, error, created_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Kind, d.ChatID, d.Text, d.Status, d.Error, d.CreatedAt, d.DurationMs,
	)
	if err != nil {
		return Delivery{}, fmt.Errorf("insert delivery: %w", err)
	}
	return d, nil
}

// ListRecentDeliveries returns the newest deliveries first.
func (s *Store) ListRecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	var deliveries []Delivery
	err := s.SelectContext(ctx, &deliveries, `
		SELECT id, kind, chat_id, text, status, error, created_at, duration_ms
		FROM deliveries
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return deliveries, nil
}
