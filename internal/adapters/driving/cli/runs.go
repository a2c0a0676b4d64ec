package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage airport runs",
	Long: `Add, list, and update airport pickup/dropoff runs.

Only active runs have their flight status and traffic refreshed by the
background poller. Activate a run when the driver heads out; complete or
cancel it when it's over.`,
	RunE: runRunsList,
}

var runsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new run",
	Long: `Add a new run in the scheduled state.

Examples:
  tetontracker runs add --flight UA1234 \
    --pickup "Jackson Hole Airport" --dropoff "Teton Village" \
    --at 2026-01-15T14:30:00Z`,
	RunE: runRunsAdd,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs",
	RunE:  runRunsList,
}

var runsActivateCmd = &cobra.Command{
	Use:   "activate [run-id]",
	Short: "Mark a run active so the poller tracks it",
	Args:  cobra.ExactArgs(1),
	RunE:  setStatusCommand(domain.RunActive),
}

var runsCompleteCmd = &cobra.Command{
	Use:   "complete [run-id]",
	Short: "Mark a run completed",
	Args:  cobra.ExactArgs(1),
	RunE:  setStatusCommand(domain.RunCompleted),
}

var runsCancelCmd = &cobra.Command{
	Use:   "cancel [run-id]",
	Short: "Mark a run cancelled",
	Args:  cobra.ExactArgs(1),
	RunE:  setStatusCommand(domain.RunCancelled),
}

var runsRemoveCmd = &cobra.Command{
	Use:   "remove [run-id]",
	Short: "Remove a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsRemove,
}

var (
	addFlightFlag  string
	addPickupFlag  string
	addDropoffFlag string
	addAtFlag      string
	listStatusFlag string
)

func init() {
	runsAddCmd.Flags().StringVar(&addFlightFlag, "flight", "", "flight number (required)")
	runsAddCmd.Flags().StringVar(&addPickupFlag, "pickup", "", "pickup location (required)")
	runsAddCmd.Flags().StringVar(&addDropoffFlag, "dropoff", "", "dropoff location (required)")
	runsAddCmd.Flags().StringVar(&addAtFlag, "at", "", "scheduled time (RFC3339)")

	runsListCmd.Flags().StringVar(&listStatusFlag, "status", "", "filter by status")
	runsCmd.Flags().StringVar(&listStatusFlag, "status", "", "filter by status")

	runsCmd.AddCommand(runsAddCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsActivateCmd)
	runsCmd.AddCommand(runsCompleteCmd)
	runsCmd.AddCommand(runsCancelCmd)
	runsCmd.AddCommand(runsRemoveCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsAdd(cmd *cobra.Command, _ []string) error {
	if runStore == nil {
		return errors.New("run store not configured")
	}
	if addFlightFlag == "" || addPickupFlag == "" || addDropoffFlag == "" {
		return errors.New("--flight, --pickup and --dropoff are required")
	}

	var scheduledAt time.Time
	if addAtFlag != "" {
		var err error
		scheduledAt, err = time.Parse(time.RFC3339, addAtFlag)
		if err != nil {
			return fmt.Errorf("parsing --at: %w", err)
		}
	}

	now := time.Now()
	run := &domain.Run{
		ID:              uuid.NewString(),
		Status:          domain.RunScheduled,
		FlightNumber:    addFlightFlag,
		PickupLocation:  addPickupFlag,
		DropoffLocation: addDropoffFlag,
		ScheduledAt:     scheduledAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx := context.Background()
	if err := runStore.Save(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if err := syncPollerRuns(ctx); err != nil {
		return err
	}

	cmd.Printf("Added run %s (%s: %s -> %s)\n",
		run.ID, run.FlightNumber, run.PickupLocation, run.DropoffLocation)
	return nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runStore == nil {
		return errors.New("run store not configured")
	}

	ctx := context.Background()

	var runs []domain.Run
	var err error
	if listStatusFlag != "" {
		status := domain.RunStatus(listStatusFlag)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", listStatusFlag)
		}
		runs, err = runStore.ListByStatus(ctx, status)
	} else {
		runs, err = runStore.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs.")
		return nil
	}

	for _, run := range runs {
		scheduled := "unscheduled"
		if !run.ScheduledAt.IsZero() {
			scheduled = run.ScheduledAt.Local().Format("Jan 2 15:04")
		}
		cmd.Printf("%s  [%s]  %s  %s -> %s  (%s)\n",
			run.ID, run.Status, run.FlightNumber,
			run.PickupLocation, run.DropoffLocation, scheduled)
	}
	return nil
}

// setStatusCommand returns a RunE that moves a run to the given status.
func setStatusCommand(status domain.RunStatus) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if runStore == nil {
			return errors.New("run store not configured")
		}

		ctx := context.Background()
		run, err := runStore.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("loading run: %w", err)
		}

		run.Status = status
		run.UpdatedAt = time.Now()
		if err := runStore.Save(ctx, run); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}

		if err := syncPollerRuns(ctx); err != nil {
			return err
		}

		cmd.Printf("Run %s is now %s.\n", run.ID, status)
		return nil
	}
}

func runRunsRemove(cmd *cobra.Command, args []string) error {
	if runStore == nil {
		return errors.New("run store not configured")
	}

	ctx := context.Background()
	if err := runStore.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("removing run: %w", err)
	}

	if err := syncPollerRuns(ctx); err != nil {
		return err
	}

	cmd.Printf("Removed run %s.\n", args[0])
	return nil
}

// syncPollerRuns pushes the store's current runs into the poller so the
// next cycle sees the change.
func syncPollerRuns(ctx context.Context) error {
	if runPoller == nil {
		return nil
	}

	runs, err := runStore.List(ctx)
	if err != nil {
		return fmt.Errorf("refreshing poller runs: %w", err)
	}
	runPoller.UpdateRuns(runs)
	return nil
}
