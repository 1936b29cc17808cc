// Package logging builds the slog.Logger shared by the handler, router and CLI.
//
// Log format is controlled by the LOG_FORMAT environment variable:
//
//	LOG_FORMAT=json    structured JSON (default)
//	LOG_FORMAT=text    key=value pairs, for local development
//
// Log level is controlled by LOG_LEVEL (debug, info, warn, error; default info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger writing to stdout, configured from environment variables.
func New() *slog.Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}

	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "text", "console":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
