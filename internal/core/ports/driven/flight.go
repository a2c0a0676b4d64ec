package driven

import (
	"context"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

// FlightService fetches the current status of a flight.
// Implementations own their retry, timeout and rate-limit policies;
// the poller treats a call as an opaque operation that either returns
// fresh data or fails.
type FlightService interface {
	// FlightStatus returns the current status for a flight number.
	FlightStatus(ctx context.Context, flightNumber string) (*domain.FlightStatus, error)
}
