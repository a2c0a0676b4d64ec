// Package runfile loads run definitions from a TOML file and watches it
// for changes, pushing fresh snapshots into the poller. This is how a
// host keeps the poller's run set in sync with an externally edited
// schedule without restarting.
package runfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driving"
	"github.com/trblackw/teton-tracker-sub001/internal/logger"
)

// debounce coalesces editor save bursts (write + rename + chmod) into a
// single reload.
const debounce = 200 * time.Millisecond

// fileRun is one [[runs]] entry in the TOML file.
type fileRun struct {
	ID              string    `toml:"id"`
	Status          string    `toml:"status"`
	FlightNumber    string    `toml:"flight_number"`
	PickupLocation  string    `toml:"pickup_location"`
	DropoffLocation string    `toml:"dropoff_location"`
	ScheduledAt     time.Time `toml:"scheduled_at,omitempty"`
}

type runsFile struct {
	Runs []fileRun `toml:"runs"`
}

// Load reads and validates runs from a TOML file. Entries without an ID
// get a generated one; entries without a status default to scheduled.
func Load(path string) ([]domain.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runs file: %w", err)
	}

	var parsed runsFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing runs file: %w", err)
	}

	now := time.Now()
	runs := make([]domain.Run, 0, len(parsed.Runs))
	for i, entry := range parsed.Runs {
		if entry.FlightNumber == "" || entry.PickupLocation == "" || entry.DropoffLocation == "" {
			return nil, fmt.Errorf("run %d is missing flight_number, pickup_location or dropoff_location: %w",
				i+1, domain.ErrInvalidInput)
		}

		status := domain.RunStatus(entry.Status)
		if entry.Status == "" {
			status = domain.RunScheduled
		} else if !status.Valid() {
			return nil, fmt.Errorf("run %d has unknown status %q: %w",
				i+1, entry.Status, domain.ErrInvalidInput)
		}

		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}

		runs = append(runs, domain.Run{
			ID:              id,
			Status:          status,
			FlightNumber:    entry.FlightNumber,
			PickupLocation:  entry.PickupLocation,
			DropoffLocation: entry.DropoffLocation,
			ScheduledAt:     entry.ScheduledAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	return runs, nil
}

// Watcher reloads the runs file on change and feeds the result to the
// poller via UpdateRuns.
type Watcher struct {
	path    string
	poller  driving.RunPoller
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the given runs file. Start performs the
// initial load; until then the poller is untouched.
func NewWatcher(path string, poller driving.RunPoller) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		path:    path,
		poller:  poller,
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// Start loads the file once, pushes the runs to the poller, and begins
// watching for changes. The containing directory is watched rather than
// the file itself so editor save-via-rename still triggers a reload.
func (w *Watcher) Start() error {
	runs, err := Load(w.path)
	if err != nil {
		return err
	}
	w.poller.UpdateRuns(runs)

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	go w.loop()
	return nil
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	base := filepath.Base(w.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("runs file watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	runs, err := Load(w.path)
	if err != nil {
		// A half-written file is expected mid-save; keep the current
		// snapshot and wait for the next event.
		logger.Warn("reloading runs file: %v", err)
		return
	}

	w.poller.UpdateRuns(runs)
	logger.Debug("runs file reloaded: %d runs", len(runs))
}
