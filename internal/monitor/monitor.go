package monitor

import (
	"context"
)

// Trend represents one ranked trending item from any source.
type Trend struct {
	Source     string
	ExternalID string
	Title      string
	URL        string
	Traffic    string // Approximate search volume as reported by the source
	Score      int
	Rank       int // 1-based, provider assigned
}

// Monitor is the interface for trend sources.
type Monitor interface {
	// Name returns the name of this source.
	Name() string

	// FetchTrends retrieves current trends in provider rank order.
	FetchTrends(ctx context.Context) ([]Trend, error)
}

// Top returns at most n trends, preserving order.
func Top(trends []Trend, n int) []Trend {
	if n <= 0 || len(trends) <= n {
		return trends
	}
	return trends[:n]
}
