package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdulachik/trendbot/internal/config"
	"github.com/abdulachik/trendbot/internal/db"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent poll cycles and deliveries",
	Long:  `Display the journal: cycle counts by status, recent cycles and recent deliveries.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent rows to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForJournal(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	// Ensure migrations are run
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	counts, err := store.CountCyclesByStatus(ctx)
	if err != nil {
		return fmt.Errorf("count cycles: %w", err)
	}

	cycles, err := store.ListRecentCycles(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list cycles: %w", err)
	}

	deliveries, err := store.ListRecentDeliveries(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list deliveries: %w", err)
	}

	fmt.Println("=== TrendBot History ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()

	fmt.Println("Cycles by status:")
	if len(counts) == 0 {
		fmt.Println("  (none)")
	}
	for _, row := range counts {
		fmt.Printf("  %s: %d\n", row.Status, row.Count)
	}
	fmt.Println()

	fmt.Println("Recent cycles:")
	for _, c := range cycles {
		fmt.Printf("  %s  %-10s %-12s items=%d %dms", c.StartedAt.Local().Format("2006-01-02 15:04:05"), c.Source, c.Status, c.Items, c.DurationMs)
		if c.Error.Valid {
			fmt.Printf("  error=%s", c.Error.String)
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Println("Recent deliveries:")
	for _, d := range deliveries {
		fmt.Printf("  %s  %-8s %-10s %q", d.CreatedAt.Local().Format("2006-01-02 15:04:05"), d.Kind, d.Status, firstLine(d.Text))
		if d.Error.Valid {
			fmt.Printf("  error=%s", d.Error.String)
		}
		fmt.Println()
	}

	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
