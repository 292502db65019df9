package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger builds the process-wide structured logger and installs it
// as the slog default so infrastructure retry logs share the same handler.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
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
