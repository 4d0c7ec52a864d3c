// -------------------------------------------------------------------------------
// vault-bootstrap - Logging
//
// Configures the global slog logger from the logging section of the config.
// Text or JSON output with a configurable level; the vault package logs
// through the global logger.
// -------------------------------------------------------------------------------

// Package logging provides slog logger configuration.
package logging

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"vault-bootstrap/pkg/config"
)

// -------------------------------------------------------------------------
// PUBLIC FUNCTIONS
// -------------------------------------------------------------------------

// SetupLogger configures the global slog logger to write to stdout.
func SetupLogger(cfg *config.LoggingConfig) {
	slog.SetDefault(NewLogger(cfg, os.Stdout))
}

// NewLogger builds a logger writing to w in the configured format.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
