package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run one poll cycle now",
	Long: `Fetch fresh flight status and traffic data for all active runs,
then print the poller's state. Works whether or not background polling
is running.`,
	RunE: runPoll,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show poller state and cached data",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(statusCmd)
}

func runPoll(cmd *cobra.Command, _ []string) error {
	if runPoller == nil {
		return errors.New("poller not configured")
	}

	cmd.Println("Polling active runs...")
	runPoller.TriggerPoll(context.Background())

	printSnapshot(cmd, runPoller.Snapshot())
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if runPoller == nil {
		return errors.New("poller not configured")
	}

	printSnapshot(cmd, runPoller.Snapshot())

	if dataCache != nil {
		flights := dataCache.Flights()
		if len(flights) > 0 {
			cmd.Println()
			cmd.Println("[Cached Flights]")
			for _, f := range flights {
				delay := ""
				if f.DelayMinutes > 0 {
					delay = " (delayed)"
				}
				cmd.Printf("  %s  %s%s  %s -> %s\n",
					f.FlightNumber, f.Status, delay, f.Origin, f.Destination)
			}
		}
	}

	return nil
}

func printSnapshot(cmd *cobra.Command, snap domain.PollSnapshot) {
	cmd.Println("[Poller]")
	cmd.Printf("  Active runs: %d\n", snap.ActiveRuns)
	cmd.Printf("  Poll cycles: %d\n", snap.PollCount)
	cmd.Printf("  Last polled: %s\n", formatTime(snap.LastPolled))
	cmd.Printf("  Last API call: %s\n", formatTime(snap.LastAPICall))
	if snap.APICallsBlocked > 0 {
		cmd.Printf("  API calls blocked (debug): %d\n", snap.APICallsBlocked)
	}

	if len(snap.Errors) > 0 {
		cmd.Println()
		cmd.Println("[Recent Errors]")
		for _, e := range snap.Errors {
			cmd.Printf("  %s  %s: %s\n",
				e.Time.Local().Format("15:04:05"), e.Context, e.Message)
		}
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC822)
}
