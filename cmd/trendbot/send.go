package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdulachik/trendbot/internal/app"
	"github.com/abdulachik/trendbot/internal/config"
	"github.com/abdulachik/trendbot/internal/notify"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a message to the configured chat",
	Long: `Send arbitrary text to the configured chat. Useful to check the
token and chat id.

Example:
  trendbot send "hello from trendbot"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForSending(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	err = a.Notifier.Send(ctx, notify.Notification{
		Kind: notify.KindManual,
		Text: strings.Join(args, " "),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	fmt.Println("Sent.")
	return nil
}
