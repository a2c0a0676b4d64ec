package domain

import "time"

// RunStatus describes where a run is in its lifecycle.
type RunStatus string

const (
	// RunScheduled means the run exists but has not started yet.
	RunScheduled RunStatus = "scheduled"

	// RunActive means the run is currently underway. Only active runs
	// have their external data refreshed by the poller.
	RunActive RunStatus = "active"

	// RunCompleted means the run finished normally.
	RunCompleted RunStatus = "completed"

	// RunCancelled means the run was called off.
	RunCancelled RunStatus = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RunStatus) Valid() bool {
	switch s {
	case RunScheduled, RunActive, RunCompleted, RunCancelled:
		return true
	}
	return false
}

// Run represents an airport pickup/dropoff run.
// The poller treats runs as read-only snapshots: it never mutates one,
// it only reads the fields below to decide what to fetch.
type Run struct {
	// ID is the unique identifier for the run.
	ID string

	// Status is the run's lifecycle state.
	Status RunStatus

	// FlightNumber is the flight this run is picking up from or
	// dropping off to (e.g. "UA1234").
	FlightNumber string

	// PickupLocation is where the passenger is collected.
	PickupLocation string

	// DropoffLocation is where the passenger is delivered.
	DropoffLocation string

	// ScheduledAt is when the run is expected to happen.
	ScheduledAt time.Time

	// CreatedAt is when the run was recorded.
	CreatedAt time.Time

	// UpdatedAt is when the run was last modified.
	UpdatedAt time.Time
}

// IsActive reports whether the run is currently underway.
func (r *Run) IsActive() bool {
	return r.Status == RunActive
}

// RouteKey returns the cache key for the run's route, joining pickup and
// dropoff with a single hyphen. The format is shared with the traffic
// invalidation contract and must not change independently of it.
func (r *Run) RouteKey() string {
	return r.PickupLocation + "-" + r.DropoffLocation
}

// ActiveRuns filters a snapshot down to the runs currently underway.
func ActiveRuns(runs []Run) []Run {
	var active []Run
	for i := range runs {
		if runs[i].IsActive() {
			active = append(active, runs[i])
		}
	}
	return active
}
