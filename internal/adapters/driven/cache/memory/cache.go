// Package memory provides an in-memory last-known-good cache for flight
// status and traffic data. It implements driven.PollNotifier so the poller
// keeps it fresh as a side effect of its cycles: invalidations mark entries
// stale, successful fetches replace them.
package memory

import (
	"sync"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driven"
)

var _ driven.PollNotifier = (*Cache)(nil)

type flightEntry struct {
	status domain.FlightStatus
	stale  bool
}

type trafficEntry struct {
	data  domain.TrafficData
	stale bool
}

// Cache holds the most recent flight status per flight number and traffic
// data per route key. Stale entries are retained so readers always see the
// last known value, even mid-refresh.
type Cache struct {
	mu      sync.RWMutex
	flights map[string]flightEntry
	traffic map[string]trafficEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		flights: make(map[string]flightEntry),
		traffic: make(map[string]trafficEntry),
	}
}

// Flight returns the last known status for a flight number. The second
// return reports whether the entry is fresh (not invalidated since its
// last update); the third reports whether any entry exists at all.
func (c *Cache) Flight(flightNumber string) (domain.FlightStatus, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.flights[flightNumber]
	if !ok {
		return domain.FlightStatus{}, false, false
	}
	return entry.status, !entry.stale, true
}

// Traffic returns the last known traffic data for a route key
// ("<pickup>-<dropoff>"). Returns as Flight does.
func (c *Cache) Traffic(routeKey string) (domain.TrafficData, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.traffic[routeKey]
	if !ok {
		return domain.TrafficData{}, false, false
	}
	return entry.data, !entry.stale, true
}

// Flights returns all cached flight statuses, in no particular order.
func (c *Cache) Flights() []domain.FlightStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.FlightStatus, 0, len(c.flights))
	for _, entry := range c.flights {
		out = append(out, entry.status)
	}
	return out
}

// DataInvalidated marks the entry for the given kind and key stale.
// Unknown kinds and missing keys are ignored.
func (c *Cache) DataInvalidated(kind, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case domain.InvalidationFlight:
		if entry, ok := c.flights[key]; ok {
			entry.stale = true
			c.flights[key] = entry
		}
	case domain.InvalidationTraffic:
		if entry, ok := c.traffic[key]; ok {
			entry.stale = true
			c.traffic[key] = entry
		}
	}
}

// FlightStatusUpdated stores a fresh flight status.
func (c *Cache) FlightStatusUpdated(flightNumber string, status *domain.FlightStatus) {
	if status == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.flights[flightNumber] = flightEntry{status: *status}
}

// TrafficDataUpdated stores fresh traffic data.
func (c *Cache) TrafficDataUpdated(routeKey string, data *domain.TrafficData) {
	if data == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.traffic[routeKey] = trafficEntry{data: *data}
}

// PollError is a no-op; the poller's own snapshot retains recent errors.
func (c *Cache) PollError(err error, context string) {}
