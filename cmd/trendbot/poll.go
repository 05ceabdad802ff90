package main

import (
	"context"
	"fmt"
	"time"

	"github.com/abdulachik/trendbot/internal/app"
	"github.com/abdulachik/trendbot/internal/config"
	"github.com/abdulachik/trendbot/internal/digest"
	"github.com/abdulachik/trendbot/internal/monitor"
	"github.com/spf13/cobra"
)

var pollDryRun bool

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run a single poll cycle",
	Long: `Fetch trends once and send them to the configured chat.

Examples:
  trendbot poll            # Fetch and send
  trendbot poll --dry-run  # Print the message without sending`,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().BoolVar(&pollDryRun, "dry-run", false, "Print the message without sending it")
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if pollDryRun {
		return dryRunPoll(ctx, cfg)
	}

	if err := cfg.ValidateForSending(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	out := a.Poller.RunCycle(ctx)
	fmt.Printf("Cycle %s: %s (%d items, %s)\n", out.ID, out.Status, out.Items, out.Duration.Round(time.Millisecond))
	if out.Err != nil {
		return fmt.Errorf("poll cycle failed: %w", out.Err)
	}
	return nil
}

func dryRunPoll(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	mon, err := app.NewMonitor(cfg)
	if err != nil {
		return err
	}

	trends, err := mon.FetchTrends(ctx)
	if err != nil {
		return fmt.Errorf("fetch trends: %w", err)
	}

	filter := monitor.NewFilter(monitor.FilterConfig{ExcludeTerms: cfg.TrendsExclude})
	trends = monitor.Top(filter.FilterTrends(trends), cfg.TrendsLimit)

	fmt.Println("=== DRY RUN - Not sending ===")
	fmt.Println()
	fmt.Println(digest.FormatTrends(trends))
	return nil
}
