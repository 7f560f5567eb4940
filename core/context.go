package core

import "context"

// Context keys for import options
type contextKey string

const runIDKey contextKey = "runID"

// withRunID stores the history run ID of the current import
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFromContext returns the history run ID, or 0 when the import is not tracked
func runIDFromContext(ctx context.Context) int64 {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0
	}
	id, ok := val.(int64)
	if !ok {
		return 0
	}
	return id
}
