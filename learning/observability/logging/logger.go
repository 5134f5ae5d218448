// Package logging provides structured logging utilities for the
// analytics core.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

func init() {
	// Initialize the default logger with a JSON handler for production.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})))
}

// levelFromEnv reads CADENCE_LOG_LEVEL (debug, info, warn, error).
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("CADENCE_LOG_LEVEL")) {
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

// Setup replaces the default logger. A text handler is used in dev and
// demo modes for readability, JSON otherwise.
func Setup(mode string) {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	var handler slog.Handler
	if mode == "dev" || mode == "demo" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ForComponent returns a logger scoped to a named component.
func ForComponent(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

type loggerKey struct{}

// ToContext adds the logger to context.
func ToContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext extracts the logger from context, falling back to the
// default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
