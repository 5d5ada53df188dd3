// Package logging defines a minimal structured-logging interface used across
// the project, with slog and zap implementations.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "dream synced", "dream_id", id, "owner", uid)
type Logger interface {
	// Debug logs verbose diagnostics.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Options selects a logger backend and its output.
type Options struct {
	Backend string // "slog" or "zap"
	Format  string // "json" or "text"
	Level   string // "debug", "info", "warn", "error"
}

// New builds a Logger for the given options writing to w. The zap backend
// always writes to stderr through its production encoder config.
func New(opts Options, w io.Writer) (Logger, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "slog":
		return newSlog(opts, w), nil
	case "zap":
		return NewZapLoggerFromOptions(opts)
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func newSlog(opts Options, w io.Writer) *SlogLogger {
	ho := &slog.HandlerOptions{Level: slogLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(w, ho)
	} else {
		h = slog.NewJSONHandler(w, ho)
	}
	return NewSlogLogger(slog.New(h))
}

func slogLevel(level string) slog.Level {
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

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
