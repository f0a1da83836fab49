package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	entryIDKey contextKey = "entry_id"
	passKey    contextKey = "pass"
)

// WithRunID annotates context with the scrape run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the scrape run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEntryID annotates context with the author entry identifier.
func WithEntryID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, entryIDKey, id)
}

// EntryIDFromContext extracts the author entry identifier if present.
func EntryIDFromContext(ctx context.Context) (int64, bool) {
	switch val := ctx.Value(entryIDKey).(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithPass annotates context with the scrape pass number.
func WithPass(ctx context.Context, pass int) context.Context {
	if pass <= 0 {
		return ctx
	}
	return context.WithValue(ctx, passKey, pass)
}

// PassFromContext extracts the scrape pass number if present.
func PassFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(passKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}
