// Package dbtest provides a migrated journal for tests in other packages.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/abdulachik/trendbot/internal/db"
)

// NewStore opens a migrated journal in a temp dir, closed on cleanup.
func NewStore(t testing.TB) *db.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	ctx := context.Background()
	store, err := db.NewStore(ctx, dbPath)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		t.Fatalf("migrate test store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
