package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a random UUID for correlating a load, reload or
// request across log lines and websocket events
func GenerateTraceID() string {
	return uuid.New().String()
}

// WithNewTraceID starts a trace for work that has no request behind it,
// such as a CLI run or a watcher reload
func WithNewTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID keeps the caller's trace ID and only starts a new one when
// ctx has none
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithNewTraceID(ctx)
}

// WithComponent tags logger with the component name. A nil logger falls
// back to the global one.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
