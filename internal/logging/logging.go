// Package logging constructs the slog loggers shared across gridwe.
// Each subsystem derives a child with logger.With("component", ...) so
// batch logs can be filtered per component.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log output formats accepted by NewLogger. Anything else falls back
// to FormatText.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger creates a logger writing to stderr; stdout stays reserved
// for batch reports and command output.
func NewLogger(level slog.Level, format string) *slog.Logger {
	return NewLoggerWithWriter(level, format, os.Stderr)
}

// NewLoggerWithWriter creates a logger for the given sink. format is
// matched case-insensitively.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps the --log-level flag value to a slog.Level.
// Unrecognized values resolve to slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
