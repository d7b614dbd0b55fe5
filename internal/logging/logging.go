// Package logging builds the component loggers used across the server.
// All loggers derive from one root zerolog logger so output format and
// level are configured in a single place.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu         sync.RWMutex
	root       zerolog.Logger
	configured bool
)

// Configure installs the root logger. Component loggers created afterwards
// inherit the writer and level. An empty level means info.
func Configure(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	mu.Lock()
	root = logger
	configured = true
	mu.Unlock()
	return logger
}

// GetLogger returns a logger tagged with the component name. Components
// asked for before Configure get a stderr logger at info level.
func GetLogger(component string) zerolog.Logger {
	mu.RLock()
	logger, ok := root, configured
	mu.RUnlock()
	if !ok {
		logger = Configure(os.Stderr, "info")
	}
	return logger.With().Str("component", component).Logger()
}

// ParseLevel maps a config level string to a zerolog level, defaulting to
// info for anything unrecognised.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
