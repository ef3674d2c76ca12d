// Package logging configures the process-wide slog logger.
//
// Output goes to stderr: stdout carries command output and, for the serve
// command, the MCP stdio transport.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// Setup installs a text or JSON handler at the given level as the default
// logger and returns it.
func Setup(level, format string) *slog.Logger {
	return SetupWriter(os.Stderr, level, format)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithBuildID tags every logger derived from ctx with a build identifier
func WithBuildID(ctx context.Context, buildID string) context.Context {
	return context.WithValue(ctx, contextKey{}, buildID)
}

// FromContext returns the default logger, tagged with the build ID if ctx has one
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if buildID, ok := ctx.Value(contextKey{}).(string); ok {
		logger = logger.With("build_id", buildID)
	}
	return logger
}

// WithComponent returns the default logger tagged with a component name
func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
