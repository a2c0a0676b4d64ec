package domain

import "time"

// FlightStatus is the externally sourced status for a flight.
// The poller fetches and forwards it without interpreting delay semantics;
// what a delay means is the consumer's concern.
type FlightStatus struct {
	// FlightNumber identifies the flight (e.g. "UA1234").
	FlightNumber string

	// Status is the provider's status string (e.g. "scheduled",
	// "en-route", "landed"). Passed through verbatim.
	Status string

	// ScheduledDeparture is the planned departure time.
	ScheduledDeparture time.Time

	// EstimatedArrival is the provider's current arrival estimate.
	EstimatedArrival time.Time

	// DelayMinutes is the provider-reported delay, if any.
	DelayMinutes int

	// Origin and Destination are airport codes.
	Origin      string
	Destination string

	// RecordedAt is when this status was fetched.
	RecordedAt time.Time
}
