package testsupport

import (
	"context"
	"testing"

	"citemap/internal/cache"
	"citemap/internal/config"
)

// MustOpenStore opens a cache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *cache.Store {
	t.Helper()

	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedEntries imports author entries for tests and returns them in position order.
func SeedEntries(t testing.TB, store *cache.Store, seeds ...cache.EntrySeed) []*cache.Entry {
	t.Helper()

	if _, _, err := store.ImportEntries(context.Background(), seeds); err != nil {
		t.Fatalf("store.ImportEntries: %v", err)
	}
	entries, err := store.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("store.ListEntries: %v", err)
	}
	return entries
}
