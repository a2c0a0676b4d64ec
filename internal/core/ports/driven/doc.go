// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - FlightService: Fetches flight status for a flight number
//   - TrafficService: Fetches traffic conditions for a route
//   - RunStore: Run persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PollNotifier: Receives cache invalidations, data updates and error
//     reports from the poller. Without it, poll results are only visible
//     through the poller's own observability snapshot.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
