// Package cli implements the tetontracker command-line interface using
// cobra. Commands are thin: they validate input, call the injected
// services, and format output.
package cli

import (
	"github.com/spf13/cobra"

	cachememory "github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/cache/memory"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driven"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driving"
	"github.com/trblackw/teton-tracker-sub001/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	runPoller   driving.RunPoller
	runStore    driven.RunStore
	configStore driven.ConfigStore
	dataCache   *cachememory.Cache
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "tetontracker",
	Short: "Track airport pickup and dropoff runs",
	Long: `Teton Tracker keeps flight status and traffic conditions fresh for
your airport runs. Active runs are polled in the background; everything
else waits quietly until you activate it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging")
}

// Services bundles everything the CLI needs from the composition root.
type Services struct {
	Poller      driving.RunPoller
	RunStore    driven.RunStore
	ConfigStore driven.ConfigStore
	Cache       *cachememory.Cache
}

// SetServices injects the services the commands operate on.
func SetServices(s Services) {
	runPoller = s.Poller
	runStore = s.RunStore
	configStore = s.ConfigStore
	dataCache = s.Cache
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
