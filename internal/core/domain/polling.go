package domain

import "time"

// Invalidation kinds passed to PollNotifier.DataInvalidated.
const (
	// InvalidationFlight marks flight-status cache keys; the key is the
	// flight number.
	InvalidationFlight = "flight"

	// InvalidationTraffic marks traffic cache keys; the key is
	// "<pickup>-<dropoff>" (single hyphen-joined, see Run.RouteKey).
	InvalidationTraffic = "traffic"
)

// PollErrorCapacity is how many recent poll errors are retained.
// Older entries are evicted first.
const PollErrorCapacity = 10

// PollingConfig holds poller configuration. It is resolved once when the
// poller is constructed and not re-read afterwards.
type PollingConfig struct {
	// Interval is how often a poll cycle runs.
	Interval time.Duration

	// RunDelay is the pause after each run's fetches, including the last.
	// It is a rate-limiting courtesy to free-tier downstream APIs, not a
	// performance artifact.
	RunDelay time.Duration

	// DebugMode suppresses live external calls while still counting how
	// many would have occurred.
	DebugMode bool

	// Enabled is the master switch. When false, Start is a no-op;
	// TriggerPoll still works.
	Enabled bool
}

// DefaultPollingConfig returns sensible defaults for the poller.
func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		Interval: 5 * time.Minute,
		RunDelay: 1 * time.Second,
		Enabled:  true,
	}
}

// PollError is one recorded downstream failure.
type PollError struct {
	// Time is when the error was recorded.
	Time time.Time

	// Message is the error text.
	Message string

	// Context describes what was being fetched, e.g.
	// "flight status for UA1234".
	Context string
}

// PollSnapshot is a point-in-time copy of the poller's observability
// state, safe for external readers to hold.
type PollSnapshot struct {
	// LastPolled is when the last non-suppressed, non-empty cycle began.
	// Zero if no such cycle has run.
	LastPolled time.Time

	// PollCount is the number of non-suppressed, non-empty cycles.
	PollCount uint64

	// ActiveRuns mirrors the active count from the last UpdateRuns call,
	// not the last poll cycle.
	ActiveRuns int

	// APICallsBlocked counts external calls suppressed by debug mode
	// (two per active run per suppressed cycle).
	APICallsBlocked uint64

	// LastAPICall is when the last cycle finished its per-run fetches.
	LastAPICall time.Time

	// Errors holds the most recent downstream failures, oldest first,
	// at most PollErrorCapacity entries.
	Errors []PollError
}
