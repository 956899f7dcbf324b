// Package log configures the application's structured logging. Every
// component gets a slog.Logger tagged with its name so the shared output can
// be filtered per subsystem.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the root logger. format is "text" or "json"; level is one of
// debug, info, warn, error (case-insensitive, defaults to info).
func New(format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// ForComponent tags a logger with the subsystem emitting the records.
func ForComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(FieldComponent, component)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
