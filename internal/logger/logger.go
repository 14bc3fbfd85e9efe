package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog.Logger on stdout configured for the application
// environment.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(env),
	})
	return slog.New(handler).With("service", "agency-portal")
}

func parseLevel(env string) slog.Level {
	switch env {
	case "production", "staging":
		return slog.LevelInfo
	case "test":
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
