package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driven"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driving"
	"github.com/trblackw/teton-tracker-sub001/internal/logger"
)

// Ensure Poller implements the driving port.
var _ driving.RunPoller = (*Poller)(nil)

// Poller keeps flight status and traffic conditions fresh for active runs.
// It owns the recurring timer, the per-run sequential fetch orchestration
// and the bounded observability state. Construct one per owning component;
// there is no package-level instance.
type Poller struct {
	config   domain.PollingConfig
	flights  driven.FlightService
	traffic  driven.TrafficService
	notifier driven.PollNotifier

	mu      sync.Mutex
	runs    []domain.Run
	running bool
	stopCh  chan struct{}

	// Observability state, guarded by mu.
	lastPolled      time.Time
	pollCount       uint64
	activeRuns      int
	apiCallsBlocked uint64
	lastAPICall     time.Time
	errors          *errorRing
}

// NewPoller creates a poller. The notifier may be nil, which disables
// notifications. The debug resolver, if non-nil, is evaluated exactly once
// here; its result is OR-ed with cfg.DebugMode and cached for the poller's
// lifetime. Flipping debug mode later requires constructing a new poller.
func NewPoller(
	cfg domain.PollingConfig,
	flights driven.FlightService,
	traffic driven.TrafficService,
	notifier driven.PollNotifier,
	debug DebugResolver,
) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = domain.DefaultPollingConfig().Interval
	}
	if cfg.RunDelay <= 0 {
		cfg.RunDelay = domain.DefaultPollingConfig().RunDelay
	}
	if debug != nil && debug() {
		cfg.DebugMode = true
	}

	return &Poller{
		config:   cfg,
		flights:  flights,
		traffic:  traffic,
		notifier: notifier,
		errors:   newErrorRing(domain.PollErrorCapacity),
	}
}

// Config returns the resolved configuration the poller was constructed
// with, including the cached debug-mode decision.
func (p *Poller) Config() domain.PollingConfig {
	return p.config
}

// Start begins periodic polling and runs one cycle immediately, without
// waiting for the first tick. Starting twice, or starting with polling
// disabled, is a logged no-op.
func (p *Poller) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		log.Println("poller: start ignored, already running")
		return nil
	}
	if !p.config.Enabled {
		p.mu.Unlock()
		log.Println("poller: start ignored, polling disabled by configuration")
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	logger.Info("poller started (interval %s)", p.config.Interval)
	go p.run(stopCh)
	return nil
}

// Stop cancels future cycles. A cycle already in flight runs to
// completion, including its delays and notifications; Stop does not wait
// for it. Stopping twice is a logged no-op.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		log.Println("poller: stop ignored, not running")
		return nil
	}
	p.running = false
	close(p.stopCh)
	p.stopCh = nil
	p.mu.Unlock()

	logger.Info("poller stopped")
	return nil
}

// TriggerPoll runs one poll cycle synchronously, independent of whether
// periodic polling is running. It does not change the running state.
func (p *Poller) TriggerPoll(ctx context.Context) {
	p.pollActiveRuns(ctx)
}

// UpdateRuns replaces the tracked run snapshot and recomputes the
// active-run count. It does not trigger a poll; the next cycle picks up
// the new snapshot.
func (p *Poller) UpdateRuns(runs []domain.Run) {
	snapshot := make([]domain.Run, len(runs))
	copy(snapshot, runs)
	active := len(domain.ActiveRuns(snapshot))

	p.mu.Lock()
	p.runs = snapshot
	p.activeRuns = active
	p.mu.Unlock()

	logger.Debug("run snapshot updated: %d runs, %d active", len(snapshot), active)
}

// Snapshot returns a defensive copy of the observability state so external
// readers cannot corrupt internal counters.
func (p *Poller) Snapshot() domain.PollSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return domain.PollSnapshot{
		LastPolled:      p.lastPolled,
		PollCount:       p.pollCount,
		ActiveRuns:      p.activeRuns,
		APICallsBlocked: p.apiCallsBlocked,
		LastAPICall:     p.lastAPICall,
		Errors:          p.errors.Snapshot(),
	}
}

// run is the ticker loop. Ticks fire on wall-clock cadence and do not wait
// for a prior cycle to finish: a slow cycle and the next tick, or a manual
// TriggerPoll, may overlap. There is deliberately no single-flight guard
// around pollActiveRuns.
func (p *Poller) run(stopCh chan struct{}) {
	go p.pollActiveRuns(context.Background())

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			go p.pollActiveRuns(context.Background())
		}
	}
}

// pollActiveRuns executes one poll cycle over the active subset of the
// tracked runs. Counters are untouched when there is nothing to do and
// when debug mode suppresses the cycle.
func (p *Poller) pollActiveRuns(ctx context.Context) {
	p.mu.Lock()
	runs := make([]domain.Run, len(p.runs))
	copy(runs, p.runs)
	p.mu.Unlock()

	active := domain.ActiveRuns(runs)
	if len(active) == 0 {
		logger.Debug("poll cycle skipped: no active runs")
		return
	}

	if p.config.DebugMode {
		// Two calls per run would have been made: flight + traffic.
		blocked := uint64(2 * len(active))
		p.mu.Lock()
		p.apiCallsBlocked += blocked
		p.mu.Unlock()
		logger.Debug("debug mode: suppressed %d API calls for %d active runs", blocked, len(active))
		return
	}

	p.mu.Lock()
	p.lastPolled = time.Now()
	p.pollCount++
	p.mu.Unlock()

	for i := range active {
		run := &active[i]
		p.pollFlightStatus(ctx, run)
		p.pollTrafficData(ctx, run)

		// Courtesy pause between runs - and after the last one - to keep
		// call rate friendly to free-tier downstream APIs.
		time.Sleep(p.config.RunDelay)
	}

	p.mu.Lock()
	p.lastAPICall = time.Now()
	p.mu.Unlock()
}

// pollFlightStatus fetches flight status for one run. Failures are
// recorded and swallowed so the remaining runs in the cycle still get
// processed.
func (p *Poller) pollFlightStatus(ctx context.Context, run *domain.Run) {
	status, err := p.flights.FlightStatus(ctx, run.FlightNumber)
	if err != nil {
		p.recordError(err, "flight status for "+run.FlightNumber)
		return
	}

	if p.notifier != nil {
		p.notifier.DataInvalidated(domain.InvalidationFlight, run.FlightNumber)
		p.notifier.FlightStatusUpdated(run.FlightNumber, status)
	}
}

// pollTrafficData fetches traffic conditions for one run's route.
// Failures are recorded and swallowed like flight failures.
func (p *Poller) pollTrafficData(ctx context.Context, run *domain.Run) {
	data, err := p.traffic.TrafficData(ctx, run.PickupLocation, run.DropoffLocation)
	if err != nil {
		p.recordError(err, fmt.Sprintf("traffic data for %s → %s", run.PickupLocation, run.DropoffLocation))
		return
	}

	if p.notifier != nil {
		p.notifier.DataInvalidated(domain.InvalidationTraffic, run.RouteKey())
		p.notifier.TrafficDataUpdated(run.RouteKey(), data)
	}
}

// recordError appends to the bounded error log, then reports upstream.
func (p *Poller) recordError(err error, errContext string) {
	logger.Warn("poll failed: %s: %v", errContext, err)

	p.mu.Lock()
	p.errors.Append(domain.PollError{
		Time:    time.Now(),
		Message: err.Error(),
		Context: errContext,
	})
	p.mu.Unlock()

	if p.notifier != nil {
		p.notifier.PollError(err, errContext)
	}
}
