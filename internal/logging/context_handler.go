package logging

import (
	"context"
	"log/slog"

	"citemap/internal/services"
)

// contextHandler copies scrape identifiers carried in the context onto each
// record, keeping per-entry lines correlated across workers without threading
// the ids through every call site.
type contextHandler struct {
	inner slog.Handler
}

func withContextAttrs(inner slog.Handler) slog.Handler {
	return &contextHandler{inner: inner}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if id, ok := services.RunIDFromContext(ctx); ok {
		record.AddAttrs(String(FieldRunID, id))
	}
	if id, ok := services.EntryIDFromContext(ctx); ok {
		record.AddAttrs(Int64(FieldEntryID, id))
	}
	if pass, ok := services.PassFromContext(ctx); ok {
		record.AddAttrs(Int(FieldPass, pass))
	}
	return h.inner.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name)}
}
