package analysis

import (
	"context"
	"testing"
	"time"

	"citemap/internal/cache"
	"citemap/internal/testsupport"
)

func addRecord(t *testing.T, store *cache.Store, record cache.Record) {
	t.Helper()
	if _, err := store.AddRecord(context.Background(), record); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
}

func TestVerifyCountsAndKeyword(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	entries := testsupport.SeedEntries(t, store,
		cache.EntrySeed{AuthorID: "a1", CitingPaper: "c1", CitedPaper: "p1"},
		cache.EntrySeed{AuthorID: "a2", CitingPaper: "c2", CitedPaper: "p1"},
	)
	addRecord(t, store, cache.Record{
		EntryID: &entries[0].ID, AuthorName: "Ada", CitingPaper: "c1", CitedPaper: "p1",
		Affiliation: "NASA Jet Propulsion Laboratory",
	})
	addRecord(t, store, cache.Record{
		EntryID: &entries[1].ID, AuthorName: "Bela", CitingPaper: "c2", CitedPaper: "p1",
		Affiliation: "ETH Zurich",
	})

	report, err := Verify(context.Background(), store, "NASA")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.TotalRecords != 2 || report.LinkedRecords != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", report.TotalRecords, report.LinkedRecords)
	}
	if report.DuplicateTuples != 0 {
		t.Fatalf("duplicate tuples = %d, want 0", report.DuplicateTuples)
	}
	if report.UniqueAuthors != 2 || report.UniqueAffiliations != 2 {
		t.Fatalf("unique = %d authors / %d affiliations, want 2/2",
			report.UniqueAuthors, report.UniqueAffiliations)
	}
	if report.KeywordHits != 1 {
		t.Fatalf("keyword hits = %d, want 1", report.KeywordHits)
	}
	if len(report.KeywordExamples) != 1 || report.KeywordExamples[0].AuthorName != "Ada" {
		t.Fatalf("unexpected keyword examples: %+v", report.KeywordExamples)
	}
	if report.Sample == nil {
		t.Fatal("expected a sample record")
	}
	if !report.Health.IntegrityCheck {
		t.Fatalf("health integrity failed: %+v", report.Health)
	}
}

func TestVerifyEmptyCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	report, err := Verify(context.Background(), store, "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.TotalRecords != 0 || report.Sample != nil {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestDuplicatesReportsSuppressedCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	addRecord(t, store, cache.Record{
		AuthorName: "Ada", CitingPaper: "c1", CitedPaper: "p1", Affiliation: "MIT",
	})

	run := cache.Run{ID: "run-1", ScholarID: "s1", Mode: "aggressive", StartedAt: time.Now().UTC()}
	if err := store.BeginRun(context.Background(), run); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	run.Duplicates = 3
	if err := store.FinishRun(context.Background(), run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	report, err := Duplicates(context.Background(), store)
	if err != nil {
		t.Fatalf("Duplicates: %v", err)
	}
	if report.TotalRecords != 1 || report.UniqueRecords != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", report.TotalRecords, report.UniqueRecords)
	}
	if len(report.StoredGroups) != 0 {
		t.Fatalf("stored duplicate groups = %d, want 0", len(report.StoredGroups))
	}
	if report.Suppressed != 3 {
		t.Fatalf("suppressed = %d, want 3", report.Suppressed)
	}
}

func TestUniquenessFindsSharedPairs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedEntries(t, store,
		cache.EntrySeed{AuthorID: "a1", CitingPaper: "c1", CitedPaper: "p1"},
		cache.EntrySeed{AuthorID: "a2", CitingPaper: "c1", CitedPaper: "p1"},
		cache.EntrySeed{AuthorID: "a1", CitingPaper: "c2", CitedPaper: "p1"},
	)

	report, err := Uniqueness(context.Background(), store)
	if err != nil {
		t.Fatalf("Uniqueness: %v", err)
	}
	if report.TotalEntries != 3 {
		t.Fatalf("total = %d, want 3", report.TotalEntries)
	}
	if report.UniqueAuthorIDs != 2 || report.DuplicateAuthorIDs != 1 {
		t.Fatalf("author ids = %d unique / %d duplicate, want 2/1",
			report.UniqueAuthorIDs, report.DuplicateAuthorIDs)
	}
	if report.UniquePairs != 2 || report.DuplicatePairs != 1 {
		t.Fatalf("pairs = %d unique / %d duplicate, want 2/1",
			report.UniquePairs, report.DuplicatePairs)
	}
	if len(report.SharedPairs) != 1 {
		t.Fatalf("shared pairs = %d, want 1", len(report.SharedPairs))
	}
	shared := report.SharedPairs[0]
	if shared.CitingPaper != "c1" || len(shared.AuthorIDs) != 2 {
		t.Fatalf("unexpected shared pair: %+v", shared)
	}
	if !report.AllTuplesUnique {
		t.Fatal("full tuples should be unique")
	}
}

func TestMatchingClassifiesAndRepairs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedEntries(t, store,
		cache.EntrySeed{AuthorID: "a1", CitingPaper: "c1", CitedPaper: "p1"},
		cache.EntrySeed{AuthorID: "a2", CitingPaper: "c2", CitedPaper: "p1"},
		cache.EntrySeed{AuthorID: "a3", CitingPaper: "c2", CitedPaper: "p1"},
	)
	addRecord(t, store, cache.Record{
		AuthorName: "Unique Match", CitingPaper: "c1", CitedPaper: "p1", Affiliation: "MIT",
	})
	addRecord(t, store, cache.Record{
		AuthorName: "Ambiguous Match", CitingPaper: "c2", CitedPaper: "p1", Affiliation: "ETH",
	})
	addRecord(t, store, cache.Record{
		AuthorName: "No Match", CitingPaper: "c9", CitedPaper: "p1", Affiliation: "KAIST",
	})

	report, err := Matching(context.Background(), store, false)
	if err != nil {
		t.Fatalf("Matching: %v", err)
	}
	if report.TotalUnlinked != 3 {
		t.Fatalf("unlinked = %d, want 3", report.TotalUnlinked)
	}
	if report.Unique != 1 || report.Ambiguous != 1 || report.Unmatched != 1 {
		t.Fatalf("classes = %d/%d/%d, want 1/1/1",
			report.Unique, report.Ambiguous, report.Unmatched)
	}
	if report.Repaired != 0 {
		t.Fatalf("repaired = %d without repair mode", report.Repaired)
	}

	report, err = Matching(context.Background(), store, true)
	if err != nil {
		t.Fatalf("Matching repair: %v", err)
	}
	if report.Repaired != 1 {
		t.Fatalf("repaired = %d, want 1", report.Repaired)
	}

	// The repaired record now carries a link, leaving the other two behind.
	report, err = Matching(context.Background(), store, false)
	if err != nil {
		t.Fatalf("Matching after repair: %v", err)
	}
	if report.TotalUnlinked != 2 || report.Unique != 0 {
		t.Fatalf("after repair: unlinked = %d, unique = %d, want 2/0",
			report.TotalUnlinked, report.Unique)
	}
}
