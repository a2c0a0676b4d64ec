// Command tetontracker tracks airport pickup/dropoff runs, keeping
// flight status and traffic conditions fresh for the active ones.
package main

import (
	"context"
	"fmt"
	"os"

	cachememory "github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/cache/memory"
	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/config/file"
	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/flight/opensky"
	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/runfile"
	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/traffic/osrm"
	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driving/cli"
	"github.com/trblackw/teton-tracker-sub001/internal/core/services"
	"github.com/trblackw/teton-tracker-sub001/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()
	runStore := store.RunStore()

	var flightOpts []opensky.ClientOption
	if u := configStore.GetString(file.KeyFlightAPIURL); u != "" {
		flightOpts = append(flightOpts, opensky.WithBaseURL(u))
	}
	flights := opensky.NewClient(
		configStore.GetString(file.KeyFlightClientID),
		configStore.GetString(file.KeyFlightClientSecret),
		flightOpts...,
	)

	var trafficOpts []osrm.ClientOption
	if u := configStore.GetString(file.KeyTrafficAPIURL); u != "" {
		trafficOpts = append(trafficOpts, osrm.WithBaseURL(u))
	}
	traffic := osrm.NewClient(trafficOpts...)

	cache := cachememory.NewCache()

	poller := services.NewPoller(
		file.PollingConfig(configStore),
		flights,
		traffic,
		cache,
		services.DetectDebugEnvironment,
	)

	// Seed the poller with the persisted runs.
	runs, err := runStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("loading runs: %w", err)
	}
	poller.UpdateRuns(runs)

	// An externally edited runs file, when configured, takes over the
	// poller's snapshot from the database seed.
	if path := configStore.GetString(file.KeyRunsFile); path != "" {
		watcher, err := runfile.NewWatcher(path, poller)
		if err != nil {
			return fmt.Errorf("creating runs file watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("watching runs file: %w", err)
		}
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("closing runs file watcher: %v", err)
			}
		}()
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Poller:      poller,
		RunStore:    runStore,
		ConfigStore: configStore,
		Cache:       cache,
	})

	return cli.Execute()
}
