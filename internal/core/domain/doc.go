// Package domain defines the core business entities for Teton Tracker.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Run: An airport pickup/dropoff run being tracked
//   - FlightStatus: Externally sourced status for a run's flight
//   - TrafficData: Externally sourced traffic conditions for a run's route
//   - PollingConfig / PollSnapshot: Configuration and observability state
//     for the background synchronization poller
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
