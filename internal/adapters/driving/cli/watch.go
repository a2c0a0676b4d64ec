package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driving/tui"
	"github.com/trblackw/teton-tracker-sub001/internal/logger"
)

var watchHeadlessFlag bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start background polling with a live dashboard",
	Long: `Start the background poller and show a live dashboard of poll
activity, cached flight data, and recent errors.

With --headless, polls in the background without the dashboard until
interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchHeadlessFlag, "headless", false,
		"poll without the dashboard")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if runPoller == nil {
		return errors.New("poller not configured")
	}

	if err := runPoller.Start(); err != nil {
		return fmt.Errorf("starting poller: %w", err)
	}
	defer func() {
		if err := runPoller.Stop(); err != nil {
			logger.Warn("stopping poller: %v", err)
		}
	}()

	if watchHeadlessFlag {
		cmd.Println("Polling in the background. Press Ctrl+C to stop.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		cmd.Println("\nStopping.")
		return nil
	}

	return tui.Run(runPoller, dataCache)
}
