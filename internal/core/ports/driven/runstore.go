package driven

import (
	"context"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

// RunStore persists runs. The poller itself never writes runs; it reads
// snapshots supplied by the host, which typically sources them from here.
type RunStore interface {
	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// List returns all runs.
	List(ctx context.Context) ([]domain.Run, error)

	// ListByStatus returns runs with the given status.
	ListByStatus(ctx context.Context, status domain.RunStatus) ([]domain.Run, error)

	// Save creates or updates a run based on ID.
	Save(ctx context.Context, run *domain.Run) error

	// Delete removes a run.
	// Returns domain.ErrNotFound if the run does not exist.
	Delete(ctx context.Context, id string) error
}
