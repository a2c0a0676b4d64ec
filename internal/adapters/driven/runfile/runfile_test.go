package runfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driving"
)

// capturePoller records UpdateRuns calls; the other operations are no-ops.
type capturePoller struct {
	mu      sync.Mutex
	updates [][]domain.Run
}

var _ driving.RunPoller = (*capturePoller)(nil)

func (p *capturePoller) Start() error                  { return nil }
func (p *capturePoller) Stop() error                   { return nil }
func (p *capturePoller) TriggerPoll(_ context.Context) {}
func (p *capturePoller) Snapshot() domain.PollSnapshot { return domain.PollSnapshot{} }

func (p *capturePoller) UpdateRuns(runs []domain.Run) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, runs)
}

func (p *capturePoller) updateCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

func (p *capturePoller) lastUpdate() []domain.Run {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return nil
	}
	return p.updates[len(p.updates)-1]
}

func writeRunsFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "runs.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const sampleRuns = `
[[runs]]
id = "run-1"
status = "active"
flight_number = "UA100"
pickup_location = "Jackson Hole Airport"
dropoff_location = "Teton Village"

[[runs]]
flight_number = "DL200"
pickup_location = "Jackson Hole Airport"
dropoff_location = "Jackson"
`

func TestLoad(t *testing.T) {
	path := writeRunsFile(t, t.TempDir(), sampleRuns)

	runs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, domain.RunActive, runs[0].Status)
	assert.Equal(t, "UA100", runs[0].FlightNumber)

	// Missing ID gets generated, missing status defaults to scheduled.
	assert.NotEmpty(t, runs[1].ID)
	assert.Equal(t, domain.RunScheduled, runs[1].Status)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidStatus(t *testing.T) {
	path := writeRunsFile(t, t.TempDir(), `
[[runs]]
status = "flying"
flight_number = "UA100"
pickup_location = "JAC"
dropoff_location = "Jackson"
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	path := writeRunsFile(t, t.TempDir(), `
[[runs]]
flight_number = "UA100"
pickup_location = "JAC"
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeRunsFile(t, t.TempDir(), "")

	runs, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestWatcher_InitialLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeRunsFile(t, dir, sampleRuns)

	poller := &capturePoller{}
	watcher, err := NewWatcher(path, poller)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, watcher.Start())

	require.Equal(t, 1, poller.updateCount())
	assert.Len(t, poller.lastUpdate(), 2)
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeRunsFile(t, dir, sampleRuns)

	poller := &capturePoller{}
	watcher, err := NewWatcher(path, poller)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, watcher.Start())

	writeRunsFile(t, dir, `
[[runs]]
id = "run-3"
status = "active"
flight_number = "AA300"
pickup_location = "Jackson Hole Airport"
dropoff_location = "Wilson"
`)

	assert.Eventually(t, func() bool {
		return poller.updateCount() >= 2
	}, 2*time.Second, 20*time.Millisecond)

	last := poller.lastUpdate()
	require.Len(t, last, 1)
	assert.Equal(t, "run-3", last[0].ID)
}

func TestWatcher_BadReloadKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeRunsFile(t, dir, sampleRuns)

	poller := &capturePoller{}
	watcher, err := NewWatcher(path, poller)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, watcher.Start())

	// Corrupt the file; the watcher must not push a broken snapshot.
	writeRunsFile(t, dir, "not valid toml [[[")

	time.Sleep(3 * debounce)
	assert.Equal(t, 1, poller.updateCount())
}

func TestWatcher_StartFailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeRunsFile(t, dir, "broken [[[")

	poller := &capturePoller{}
	watcher, err := NewWatcher(path, poller)
	require.NoError(t, err)
	defer watcher.Close()

	assert.Error(t, watcher.Start())
	assert.Zero(t, poller.updateCount())
}
