package logging

import (
	"context"
	"log/slog"
)

// LevelTrace is below slog.LevelDebug for wire-level detail such as raw
// store records.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps a -v count to a level: 0 is warn, 1 info, 2 debug,
// 3 or more trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	}
	return LevelTrace
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a discarding logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return NewDiscard()
}
