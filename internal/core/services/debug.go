package services

import (
	"os"
	"strconv"

	"github.com/trblackw/teton-tracker-sub001/internal/logger"
)

// DebugResolver decides, once at poller construction, whether live
// external calls should be suppressed. The host supplies whichever
// resolver fits its deployment; DetectDebugEnvironment is one possible
// implementation.
type DebugResolver func() bool

// Environment variables consulted by DetectDebugEnvironment.
const (
	// EnvDebugOverride forces debug mode on when set to a truthy value.
	EnvDebugOverride = "TETON_DEBUG"

	// EnvAppEnv marks the deployment environment ("development" enables
	// debug mode).
	EnvAppEnv = "TETON_ENV"

	// EnvDevServerPort is set by the local dev server wrapper; any
	// non-empty value enables debug mode.
	EnvDevServerPort = "TETON_DEV_PORT"
)

// buildMode is overridable at link time:
//
//	go build -ldflags "-X .../services.buildMode=development"
var buildMode = "release"

// DetectDebugEnvironment is the default debug-mode heuristic: a
// disjunction of development signals. It is intended to be evaluated once
// and cached by the poller, never per cycle.
func DetectDebugEnvironment() bool {
	if v := os.Getenv(EnvDebugOverride); v != "" {
		if forced, err := strconv.ParseBool(v); err == nil && forced {
			logger.Debug("debug mode: forced by %s", EnvDebugOverride)
			return true
		}
	}

	if os.Getenv(EnvAppEnv) == "development" {
		logger.Debug("debug mode: %s=development", EnvAppEnv)
		return true
	}

	if os.Getenv(EnvDevServerPort) != "" {
		logger.Debug("debug mode: dev server port set")
		return true
	}

	if buildMode == "development" {
		logger.Debug("debug mode: development build")
		return true
	}

	if host, err := os.Hostname(); err == nil && (host == "localhost" || host == "127.0.0.1") {
		logger.Debug("debug mode: localhost hostname")
		return true
	}

	return false
}
