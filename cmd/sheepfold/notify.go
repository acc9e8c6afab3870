package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/notify"
	"github.com/vovakirdan/sheepfold/internal/pasture"
)

var (
	flagNotifyOnce     bool
	flagNotifyInterval time.Duration
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Dispatch reminders for due plans",
	Long: `Look for plans that are due soon or slightly overdue and send one
reminder for each. Reminders are written to the log.

Examples:
  sheepfold notify --once
  sheepfold notify --interval 5m`,
	Args: cobra.NoArgs,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().BoolVar(&flagNotifyOnce, "once", false, "Run a single pass and exit")
	notifyCmd.Flags().DurationVar(&flagNotifyInterval, "interval", time.Minute, "Time between passes")
}

func runNotify(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.store.Close()

	logger := a.logger.WithPrefix("notify")
	d := notify.NewDispatcher(a.store, notify.LogSender{Logger: logger}, logger)

	if flagNotifyOnce {
		res, err := d.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d due, %d sent, %d failed\n", res.Due, res.Sent, res.Failed)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx, flagNotifyInterval)
}
