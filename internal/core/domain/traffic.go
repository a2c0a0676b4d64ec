package domain

import "time"

// TrafficData is the externally sourced traffic conditions for a route.
// The poller fetches and forwards it; severity classification is out of
// scope for this subsystem.
type TrafficData struct {
	// Origin is the route's starting point (the run's pickup location).
	Origin string

	// Destination is the route's end point (the run's dropoff location).
	Destination string

	// Duration is the free-flow travel time for the route.
	Duration time.Duration

	// DurationInTraffic is the travel time under current conditions.
	DurationInTraffic time.Duration

	// DistanceMeters is the route length.
	DistanceMeters int

	// RecordedAt is when this data was fetched.
	RecordedAt time.Time
}

// RouteKey returns the cache key for the route, joining origin and
// destination with a single hyphen.
func (t *TrafficData) RouteKey() string {
	return t.Origin + "-" + t.Destination
}
