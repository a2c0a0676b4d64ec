package driven

import "github.com/trblackw/teton-tracker-sub001/internal/core/domain"

// PollNotifier receives the side effects of a poll cycle. It is the
// capability interface implemented by whatever cache layer the host uses,
// injected into the poller at construction. A nil notifier disables all
// notifications; implementations must not block for long and must not
// panic - the poller calls them inline on the polling goroutine.
type PollNotifier interface {
	// DataInvalidated signals that cached data for a key became stale.
	// Kind is domain.InvalidationFlight with the flight number as key,
	// or domain.InvalidationTraffic with the hyphen-joined route key.
	DataInvalidated(kind, key string)

	// FlightStatusUpdated delivers a freshly fetched flight status.
	FlightStatusUpdated(flightNumber string, status *domain.FlightStatus)

	// TrafficDataUpdated delivers freshly fetched traffic conditions.
	TrafficDataUpdated(routeKey string, data *domain.TrafficData)

	// PollError reports a downstream fetch failure after the poller has
	// already recorded it locally. For upstream logging/telemetry only.
	PollError(err error, context string)
}
