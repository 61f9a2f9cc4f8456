package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog. Non-production
// environments log at debug.
func New(environment string) *slog.Logger {
	return newWithWriter(os.Stdout, environment)
}

func newWithWriter(w io.Writer, environment string) *slog.Logger {
	level := slog.LevelDebug
	if environment == "prod" || environment == "production" {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "elan", "env", environment)
}
