package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driven"
)

// --- Mock implementations for poller testing ---

// callLog records collaborator invocations across mocks so tests can
// assert strict per-run ordering.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// mockFlightService implements driven.FlightService for testing.
type mockFlightService struct {
	mu    sync.Mutex
	calls []string
	err   error
	log   *callLog
}

func (m *mockFlightService) FlightStatus(_ context.Context, flightNumber string) (*domain.FlightStatus, error) {
	m.mu.Lock()
	m.calls = append(m.calls, flightNumber)
	m.mu.Unlock()
	if m.log != nil {
		m.log.add("flight:" + flightNumber)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.FlightStatus{
		FlightNumber: flightNumber,
		Status:       "en-route",
		RecordedAt:   time.Now(),
	}, nil
}

func (m *mockFlightService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockTrafficService implements driven.TrafficService for testing.
type mockTrafficService struct {
	mu    sync.Mutex
	calls [][2]string
	err   error
	log   *callLog
}

func (m *mockTrafficService) TrafficData(_ context.Context, pickup, dropoff string) (*domain.TrafficData, error) {
	m.mu.Lock()
	m.calls = append(m.calls, [2]string{pickup, dropoff})
	m.mu.Unlock()
	if m.log != nil {
		m.log.add("traffic:" + pickup + "-" + dropoff)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.TrafficData{
		Origin:            pickup,
		Destination:       dropoff,
		Duration:          20 * time.Minute,
		DurationInTraffic: 25 * time.Minute,
		RecordedAt:        time.Now(),
	}, nil
}

func (m *mockTrafficService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockNotifier implements driven.PollNotifier for testing.
type mockNotifier struct {
	mu             sync.Mutex
	invalidations  [][2]string
	flightUpdates  []string
	trafficUpdates []string
	errorContexts  []string
}

func (m *mockNotifier) DataInvalidated(kind, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations = append(m.invalidations, [2]string{kind, key})
}

func (m *mockNotifier) FlightStatusUpdated(flightNumber string, _ *domain.FlightStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flightUpdates = append(m.flightUpdates, flightNumber)
}

func (m *mockNotifier) TrafficDataUpdated(routeKey string, _ *domain.TrafficData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trafficUpdates = append(m.trafficUpdates, routeKey)
}

func (m *mockNotifier) PollError(_ error, errContext string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorContexts = append(m.errorContexts, errContext)
}

func (m *mockNotifier) invalidationsByKind(kind string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for _, inv := range m.invalidations {
		if inv[0] == kind {
			keys = append(keys, inv[1])
		}
	}
	return keys
}

// Ensure mocks implement interfaces
var _ driven.FlightService = (*mockFlightService)(nil)
var _ driven.TrafficService = (*mockTrafficService)(nil)
var _ driven.PollNotifier = (*mockNotifier)(nil)

func testConfig() domain.PollingConfig {
	return domain.PollingConfig{
		Interval: 100 * time.Millisecond,
		RunDelay: 5 * time.Millisecond,
		Enabled:  true,
	}
}

func activeRun(id, flight, pickup, dropoff string) domain.Run {
	return domain.Run{
		ID:              id,
		Status:          domain.RunActive,
		FlightNumber:    flight,
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
	}
}

// ==================== Poller Tests ====================

func TestPoller_UpdateRuns_ActiveCount(t *testing.T) {
	p := NewPoller(testConfig(), &mockFlightService{}, &mockTrafficService{}, nil, nil)

	p.UpdateRuns([]domain.Run{
		{ID: "a", Status: domain.RunScheduled},
		{ID: "b", Status: domain.RunActive},
		{ID: "c", Status: domain.RunActive},
		{ID: "d", Status: domain.RunCompleted},
	})

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.ActiveRuns)
	// UpdateRuns never triggers a poll.
	assert.Equal(t, uint64(0), snap.PollCount)
	assert.True(t, snap.LastPolled.IsZero())
}

func TestPoller_UpdateRuns_DefensiveCopy(t *testing.T) {
	p := NewPoller(testConfig(), &mockFlightService{}, &mockTrafficService{}, nil, nil)

	runs := []domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")}
	p.UpdateRuns(runs)

	// Mutating the caller's slice must not affect the tracked snapshot.
	runs[0].Status = domain.RunCancelled

	assert.Equal(t, 1, p.Snapshot().ActiveRuns)
	p.TriggerPoll(context.Background())
	assert.Equal(t, uint64(1), p.Snapshot().PollCount)
}

func TestPoller_Start_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	flights := &mockFlightService{}
	p := NewPoller(cfg, flights, &mockTrafficService{}, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	require.NoError(t, p.Start())
	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, uint64(0), p.Snapshot().PollCount)
	assert.Zero(t, flights.callCount())

	// Stop on a never-started poller is a logged no-op.
	require.NoError(t, p.Stop())
}

func TestPoller_Start_RunsImmediateCycle(t *testing.T) {
	flights := &mockFlightService{}
	p := NewPoller(testConfig(), flights, &mockTrafficService{}, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	require.NoError(t, p.Start())
	defer p.Stop() //nolint:errcheck

	// The first cycle runs without waiting for the first tick.
	assert.Eventually(t, func() bool {
		return p.Snapshot().PollCount == 1
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestPoller_DoubleStart_SingleTimer(t *testing.T) {
	flights := &mockFlightService{}
	p := NewPoller(testConfig(), flights, &mockTrafficService{}, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	require.NoError(t, p.Start())
	require.NoError(t, p.Start()) // logged no-op
	defer p.Stop()                //nolint:errcheck

	// Over ~2.5 intervals a single timer produces the immediate cycle
	// plus two ticks. A duplicated timer would roughly double that.
	time.Sleep(250 * time.Millisecond)
	count := p.Snapshot().PollCount
	assert.GreaterOrEqual(t, count, uint64(2))
	assert.LessOrEqual(t, count, uint64(4))
}

func TestPoller_Stop_NoFurtherCycles(t *testing.T) {
	p := NewPoller(testConfig(), &mockFlightService{}, &mockTrafficService{}, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	require.NoError(t, p.Start())
	assert.Eventually(t, func() bool {
		return p.Snapshot().PollCount >= 1
	}, 50*time.Millisecond, 5*time.Millisecond)

	require.NoError(t, p.Stop())
	count := p.Snapshot().PollCount

	// Advancing past several intervals produces no further cycles.
	time.Sleep(350 * time.Millisecond)
	assert.Equal(t, count, p.Snapshot().PollCount)

	// Double stop is a logged no-op.
	require.NoError(t, p.Stop())
}

func TestPoller_TriggerPoll_NoActiveRuns(t *testing.T) {
	flights := &mockFlightService{}
	traffic := &mockTrafficService{}
	p := NewPoller(testConfig(), flights, traffic, nil, nil)
	p.UpdateRuns([]domain.Run{
		{ID: "a", Status: domain.RunScheduled},
		{ID: "b", Status: domain.RunCompleted},
	})

	p.TriggerPoll(context.Background())

	snap := p.Snapshot()
	assert.Equal(t, uint64(0), snap.PollCount)
	assert.True(t, snap.LastPolled.IsZero())
	assert.True(t, snap.LastAPICall.IsZero())
	assert.Zero(t, flights.callCount())
	assert.Zero(t, traffic.callCount())
}

func TestPoller_DebugMode_SuppressesCalls(t *testing.T) {
	cfg := testConfig()
	cfg.DebugMode = true
	flights := &mockFlightService{}
	traffic := &mockTrafficService{}
	p := NewPoller(cfg, flights, traffic, nil, nil)
	p.UpdateRuns([]domain.Run{
		activeRun("a", "UA100", "JAC", "Teton Village"),
		activeRun("b", "DL200", "JAC", "Jackson"),
		activeRun("c", "AA300", "JAC", "Wilson"),
	})

	p.TriggerPoll(context.Background())

	snap := p.Snapshot()
	assert.Equal(t, uint64(6), snap.APICallsBlocked) // 2 calls per run
	assert.Equal(t, uint64(0), snap.PollCount)
	assert.True(t, snap.LastPolled.IsZero())
	assert.True(t, snap.LastAPICall.IsZero())
	assert.Zero(t, flights.callCount())
	assert.Zero(t, traffic.callCount())

	// Blocked counter is monotonic across cycles.
	p.TriggerPoll(context.Background())
	assert.Equal(t, uint64(12), p.Snapshot().APICallsBlocked)
}

func TestPoller_DebugResolver_CachedAtConstruction(t *testing.T) {
	resolved := 0
	resolver := func() bool {
		resolved++
		return true
	}

	p := NewPoller(testConfig(), &mockFlightService{}, &mockTrafficService{}, nil, resolver)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	p.TriggerPoll(context.Background())
	p.TriggerPoll(context.Background())

	assert.True(t, p.Config().DebugMode)
	assert.Equal(t, 1, resolved, "resolver must be evaluated exactly once")
	assert.Equal(t, uint64(4), p.Snapshot().APICallsBlocked)
}

func TestPoller_SuccessfulCycle(t *testing.T) {
	cfg := testConfig()
	cfg.RunDelay = 30 * time.Millisecond
	flights := &mockFlightService{}
	traffic := &mockTrafficService{}
	notifier := &mockNotifier{}
	p := NewPoller(cfg, flights, traffic, notifier, nil)
	p.UpdateRuns([]domain.Run{
		activeRun("a", "UA100", "JAC", "Teton Village"),
		activeRun("b", "DL200", "JAC", "Jackson"),
		activeRun("c", "AA300", "JAC", "Wilson"),
	})

	start := time.Now()
	p.TriggerPoll(context.Background())
	elapsed := time.Since(start)

	// The courtesy delay applies after every run, including the last.
	assert.GreaterOrEqual(t, elapsed, 3*cfg.RunDelay)

	snap := p.Snapshot()
	assert.Equal(t, uint64(1), snap.PollCount)
	assert.False(t, snap.LastPolled.IsZero())
	assert.False(t, snap.LastAPICall.IsZero())
	assert.Equal(t, 3, flights.callCount())
	assert.Equal(t, 3, traffic.callCount())

	assert.Equal(t, []string{"UA100", "DL200", "AA300"},
		notifier.invalidationsByKind(domain.InvalidationFlight))
	assert.Equal(t, []string{"JAC-Teton Village", "JAC-Jackson", "JAC-Wilson"},
		notifier.invalidationsByKind(domain.InvalidationTraffic))
	assert.Equal(t, []string{"UA100", "DL200", "AA300"}, notifier.flightUpdates)
	assert.Equal(t, []string{"JAC-Teton Village", "JAC-Jackson", "JAC-Wilson"}, notifier.trafficUpdates)
	assert.Empty(t, notifier.errorContexts)
}

func TestPoller_SequentialPerRunOrder(t *testing.T) {
	log := &callLog{}
	flights := &mockFlightService{log: log}
	traffic := &mockTrafficService{log: log}
	p := NewPoller(testConfig(), flights, traffic, nil, nil)
	p.UpdateRuns([]domain.Run{
		activeRun("a", "UA100", "JAC", "Teton Village"),
		activeRun("b", "DL200", "JAC", "Jackson"),
	})

	p.TriggerPoll(context.Background())

	assert.Equal(t, []string{
		"flight:UA100",
		"traffic:JAC-Teton Village",
		"flight:DL200",
		"traffic:JAC-Jackson",
	}, log.all())
}

func TestPoller_FlightFailure_DoesNotAbortCycle(t *testing.T) {
	flights := &mockFlightService{err: errors.New("upstream 502")}
	traffic := &mockTrafficService{}
	notifier := &mockNotifier{}
	p := NewPoller(testConfig(), flights, traffic, notifier, nil)
	p.UpdateRuns([]domain.Run{
		activeRun("a", "UA100", "JAC", "Teton Village"),
		activeRun("b", "DL200", "JAC", "Jackson"),
		activeRun("c", "AA300", "JAC", "Wilson"),
	})

	p.TriggerPoll(context.Background())

	// Traffic for every run still proceeds after its flight fetch fails.
	assert.Equal(t, 3, traffic.callCount())

	snap := p.Snapshot()
	assert.Equal(t, uint64(1), snap.PollCount)
	require.Len(t, snap.Errors, 3)
	assert.Equal(t, "flight status for UA100", snap.Errors[0].Context)
	assert.Equal(t, "upstream 502", snap.Errors[0].Message)

	// Errors were reported upstream after local recording.
	assert.Equal(t, []string{
		"flight status for UA100",
		"flight status for DL200",
		"flight status for AA300",
	}, notifier.errorContexts)

	// No flight invalidations on failure; traffic invalidations intact.
	assert.Empty(t, notifier.invalidationsByKind(domain.InvalidationFlight))
	assert.Len(t, notifier.invalidationsByKind(domain.InvalidationTraffic), 3)
}

func TestPoller_TrafficFailure_Context(t *testing.T) {
	traffic := &mockTrafficService{err: errors.New("route unavailable")}
	p := NewPoller(testConfig(), &mockFlightService{}, traffic, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	p.TriggerPoll(context.Background())

	snap := p.Snapshot()
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "traffic data for JAC → Teton Village", snap.Errors[0].Context)
}

func TestPoller_ErrorLogBounded(t *testing.T) {
	flights := &mockFlightService{err: errors.New("down")}
	traffic := &mockTrafficService{err: errors.New("down")}
	p := NewPoller(testConfig(), flights, traffic, nil, nil)

	// Each cycle over one run records two errors; seven cycles record 14.
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})
	for i := 0; i < 7; i++ {
		p.TriggerPoll(context.Background())
	}

	snap := p.Snapshot()
	assert.Len(t, snap.Errors, domain.PollErrorCapacity)
	// The oldest entries were evicted; the newest is a traffic error.
	assert.Equal(t, "traffic data for JAC → Teton Village",
		snap.Errors[len(snap.Errors)-1].Context)
}

func TestPoller_TriggerPoll_WhileStopped(t *testing.T) {
	p := NewPoller(testConfig(), &mockFlightService{}, &mockTrafficService{}, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})

	// Never started; manual trigger still executes a full cycle.
	p.TriggerPoll(context.Background())
	assert.Equal(t, uint64(1), p.Snapshot().PollCount)
}

func TestPoller_Snapshot_DefensiveCopy(t *testing.T) {
	flights := &mockFlightService{err: errors.New("down")}
	p := NewPoller(testConfig(), flights, &mockTrafficService{}, nil, nil)
	p.UpdateRuns([]domain.Run{activeRun("a", "UA100", "JAC", "Teton Village")})
	p.TriggerPoll(context.Background())

	snap := p.Snapshot()
	require.Len(t, snap.Errors, 1)
	snap.Errors[0].Context = "tampered"

	assert.Equal(t, "flight status for UA100", p.Snapshot().Errors[0].Context)
}

func TestPoller_ConfigDefaults(t *testing.T) {
	p := NewPoller(domain.PollingConfig{Enabled: true}, &mockFlightService{}, &mockTrafficService{}, nil, nil)

	cfg := p.Config()
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 1*time.Second, cfg.RunDelay)
}

func TestPoller_ManyRuns_AllProcessed(t *testing.T) {
	flights := &mockFlightService{}
	traffic := &mockTrafficService{}
	p := NewPoller(testConfig(), flights, traffic, nil, nil)

	var runs []domain.Run
	for i := 0; i < 10; i++ {
		runs = append(runs, activeRun(
			fmt.Sprintf("run-%d", i),
			fmt.Sprintf("UA%03d", i),
			"JAC",
			fmt.Sprintf("Stop %d", i),
		))
	}
	p.UpdateRuns(runs)

	p.TriggerPoll(context.Background())

	assert.Equal(t, 10, flights.callCount())
	assert.Equal(t, 10, traffic.callCount())
	assert.Equal(t, uint64(1), p.Snapshot().PollCount)
}
