package cache_test

import (
	"context"
	"testing"

	"citemap/internal/cache"
	"citemap/internal/testsupport"
)

func seed(id, citing, cited string) cache.EntrySeed {
	return cache.EntrySeed{AuthorID: id, CitingPaper: citing, CitedPaper: cited}
}

func TestImportEntriesAssignsPositionsAndSkipsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	added, skipped, err := store.ImportEntries(ctx, []cache.EntrySeed{
		seed("a1", "citing-1", "cited-1"),
		seed("a2", "citing-2", "cited-1"),
		seed("a1", "citing-1", "cited-1"),
	})
	if err != nil {
		t.Fatalf("ImportEntries failed: %v", err)
	}
	if added != 2 || skipped != 1 {
		t.Fatalf("expected 2 added 1 skipped, got %d/%d", added, skipped)
	}

	entries, err := store.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Position != 0 || entries[1].Position != 1 {
		t.Fatalf("unexpected positions: %d, %d", entries[0].Position, entries[1].Position)
	}
	if entries[0].Status != cache.StatusPending {
		t.Fatalf("expected pending status, got %s", entries[0].Status)
	}

	// A second import continues positions after the existing maximum.
	added, skipped, err = store.ImportEntries(ctx, []cache.EntrySeed{
		seed("a3", "citing-3", "cited-1"),
	})
	if err != nil {
		t.Fatalf("second ImportEntries failed: %v", err)
	}
	if added != 1 || skipped != 0 {
		t.Fatalf("expected 1 added, got %d/%d", added, skipped)
	}
	entries, err = store.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if entries[2].Position != 2 {
		t.Fatalf("expected position 2, got %d", entries[2].Position)
	}
}

func TestImportEntriesRejectsEmptyFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, _, err := store.ImportEntries(context.Background(), []cache.EntrySeed{
		seed("", "citing", "cited"),
	}); err == nil {
		t.Fatal("expected error for empty author id")
	}
}

func TestClaimNextPendingHandsOutDistinctEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedEntries(t, store,
		seed("a1", "citing-1", "cited-1"),
		seed("a2", "citing-2", "cited-1"),
	)

	first, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatalf("ClaimNextPending failed: %v", err)
	}
	if first == nil || first.AuthorID != "a1" {
		t.Fatalf("expected first entry, got %#v", first)
	}
	if first.Status != cache.StatusFetching {
		t.Fatalf("expected fetching status, got %s", first.Status)
	}

	second, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatalf("ClaimNextPending failed: %v", err)
	}
	if second == nil || second.AuthorID != "a2" {
		t.Fatalf("expected second entry, got %#v", second)
	}

	third, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatalf("ClaimNextPending failed: %v", err)
	}
	if third != nil {
		t.Fatalf("expected no entry, got %#v", third)
	}
}

func TestStatusTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entries := testsupport.SeedEntries(t, store,
		seed("a1", "citing-1", "cited-1"),
		seed("a2", "citing-2", "cited-1"),
		seed("a3", "citing-3", "cited-1"),
	)

	if err := store.MarkFetched(ctx, entries[0].ID); err != nil {
		t.Fatalf("MarkFetched failed: %v", err)
	}
	if err := store.MarkSkipped(ctx, entries[1].ID); err != nil {
		t.Fatalf("MarkSkipped failed: %v", err)
	}
	if err := store.MarkFailed(ctx, entries[2].ID, "blocked"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	failed, err := store.GetEntry(ctx, entries[2].ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if failed.Status != cache.StatusFailed || failed.RetryCount != 1 {
		t.Fatalf("unexpected failed entry: %#v", failed)
	}
	if failed.ErrorMessage != "blocked" {
		t.Fatalf("expected error message preserved, got %q", failed.ErrorMessage)
	}

	requeued, err := store.RequeueFailed(ctx)
	if err != nil {
		t.Fatalf("RequeueFailed failed: %v", err)
	}
	if requeued != 1 {
		t.Fatalf("expected 1 requeued, got %d", requeued)
	}

	if err := store.MarkFailed(ctx, entries[2].ID, "blocked again"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	exhausted, err := store.ExhaustFailed(ctx)
	if err != nil {
		t.Fatalf("ExhaustFailed failed: %v", err)
	}
	if exhausted != 1 {
		t.Fatalf("expected 1 exhausted, got %d", exhausted)
	}

	entry, err := store.GetEntry(ctx, entries[2].ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry.Status != cache.StatusExhausted || entry.RetryCount != 2 {
		t.Fatalf("unexpected exhausted entry: %#v", entry)
	}

	revived, err := store.RequeueExhausted(ctx)
	if err != nil {
		t.Fatalf("RequeueExhausted failed: %v", err)
	}
	if revived != 1 {
		t.Fatalf("expected 1 revived, got %d", revived)
	}
}

func TestAddRecordSuppressesDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entries := testsupport.SeedEntries(t, store, seed("a1", "citing-1", "cited-1"))
	record := cache.Record{
		EntryID:     &entries[0].ID,
		AuthorName:  "Ada Lovelace",
		CitingPaper: "citing-1",
		CitedPaper:  "cited-1",
		Affiliation: "Analytical Engine Lab",
	}

	added, err := store.AddRecord(ctx, record)
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	if !added {
		t.Fatal("expected first insert to be new")
	}

	added, err = store.AddRecord(ctx, record)
	if err != nil {
		t.Fatalf("duplicate AddRecord failed: %v", err)
	}
	if added {
		t.Fatal("expected duplicate tuple to be suppressed")
	}

	counts, err := store.CountRecords(ctx)
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if counts.Total != 1 || counts.Linked != 1 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}

func TestUnlinkedRecordsAndLinking(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entries := testsupport.SeedEntries(t, store, seed("a1", "citing-1", "cited-1"))

	if _, err := store.AddRecord(ctx, cache.Record{
		AuthorName:  "Grace Hopper",
		CitingPaper: "citing-1",
		CitedPaper:  "cited-1",
		Affiliation: "Navy",
	}); err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}

	unlinked, err := store.UnlinkedRecords(ctx)
	if err != nil {
		t.Fatalf("UnlinkedRecords failed: %v", err)
	}
	if len(unlinked) != 1 {
		t.Fatalf("expected 1 unlinked record, got %d", len(unlinked))
	}

	if err := store.LinkRecord(ctx, unlinked[0].ID, entries[0].ID); err != nil {
		t.Fatalf("LinkRecord failed: %v", err)
	}

	unlinked, err = store.UnlinkedRecords(ctx)
	if err != nil {
		t.Fatalf("UnlinkedRecords failed: %v", err)
	}
	if len(unlinked) != 0 {
		t.Fatalf("expected no unlinked records, got %d", len(unlinked))
	}
}

func TestRunsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if last, err := store.LastRun(ctx); err != nil || last != nil {
		t.Fatalf("expected no runs yet, got %#v err=%v", last, err)
	}

	run := cache.Run{ID: "run-1", ScholarID: "HNw5OdcAAAAJ", Mode: "aggressive"}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	run.Passes = 2
	run.Fetched = 5
	run.Failed = 1
	run.Duplicates = 3
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	last, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if last == nil || last.ID != "run-1" {
		t.Fatalf("unexpected last run: %#v", last)
	}
	if last.Fetched != 5 || last.Duplicates != 3 || last.FinishedAt == nil {
		t.Fatalf("counters not persisted: %#v", last)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	entries := testsupport.SeedEntries(t, store,
		seed("a1", "citing-1", "cited-1"),
		seed("a2", "citing-2", "cited-1"),
	)
	if err := store.MarkFetched(ctx, entries[0].ID); err != nil {
		t.Fatalf("MarkFetched failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[cache.StatusPending] != 1 || stats[cache.StatusFetched] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("expected healthy database: %#v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected no missing tables, got %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalEntries != 2 {
		t.Fatalf("expected 2 entries, got %d", health.TotalEntries)
	}
}

func TestResetStuckFetchingOnOpen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedEntries(t, store, seed("a1", "citing-1", "cited-1"))
	if _, err := store.ClaimNextPending(ctx); err != nil {
		t.Fatalf("ClaimNextPending failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	entries, err := reopened.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if entries[0].Status != cache.StatusPending {
		t.Fatalf("expected fetching entry reset to pending, got %s", entries[0].Status)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := cache.ParseStatus(" Fetched "); !ok || status != cache.StatusFetched {
		t.Fatalf("unexpected parse result: %s %v", status, ok)
	}
	if _, ok := cache.ParseStatus("unknown"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
