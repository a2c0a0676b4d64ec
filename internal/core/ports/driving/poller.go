package driving

import (
	"context"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

// RunPoller keeps external data fresh for active runs. It owns a recurring
// timer and a bounded observability state; each cycle fetches flight status
// and traffic data for every active run.
type RunPoller interface {
	// Start begins periodic polling and runs one cycle immediately.
	// No-op if already running or polling is disabled by configuration.
	Start() error

	// Stop cancels future cycles. A cycle already in flight runs to
	// completion; Stop does not wait for it.
	Stop() error

	// TriggerPoll runs one poll cycle synchronously, regardless of
	// whether periodic polling is running.
	TriggerPoll(ctx context.Context)

	// UpdateRuns replaces the tracked run snapshot. It recomputes the
	// active-run count in the observability state but does not trigger
	// a poll.
	UpdateRuns(runs []domain.Run)

	// Snapshot returns a defensive copy of the observability state.
	Snapshot() domain.PollSnapshot
}
