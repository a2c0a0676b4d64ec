package driven

import (
	"context"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

// TrafficService fetches current traffic conditions for a route.
// Implementations own their retry, timeout and rate-limit policies.
type TrafficService interface {
	// TrafficData returns current conditions for the route between the
	// pickup and dropoff locations.
	TrafficData(ctx context.Context, pickup, dropoff string) (*domain.TrafficData, error)
}
