package common

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID  contextKey = "run_id"
	ContextKeyLogger contextKey = "logger"
)

// WithRunID tags the context with a fresh extraction run id and returns it.
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return context.WithValue(ctx, ContextKeyRunID, id), id
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// LoggerFrom returns logger annotated with the run id carried by ctx, if any.
func LoggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RunIDFromContext(ctx); id != "" {
		return logger.With("run_id", id)
	}
	return logger
}
