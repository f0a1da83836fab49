package analysis

import (
	"context"
	"strings"

	"citemap/internal/cache"
)

// KeywordExample pairs an author with the affiliation that matched the
// verification keyword.
type KeywordExample struct {
	AuthorName  string
	Affiliation string
}

// VerifyReport summarizes the state of the affiliation cache.
type VerifyReport struct {
	CachePath          string
	TotalRecords       int
	LinkedRecords      int
	DuplicateTuples    int
	Sample             *cache.Record
	UniqueAuthors      int
	UniqueAffiliations int
	Keyword            string
	KeywordHits        int
	KeywordExamples    []KeywordExample
	Health             cache.DatabaseHealth
}

const maxKeywordExamples = 5

// Verify inspects the affiliation cache: record counts, a sample record,
// keyword hits with examples, and database health.
func Verify(ctx context.Context, store *cache.Store, keyword string) (*VerifyReport, error) {
	counts, err := store.CountRecords(ctx)
	if err != nil {
		return nil, err
	}
	records, err := store.Records(ctx)
	if err != nil {
		return nil, err
	}
	health, err := store.CheckHealth(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		CachePath:          store.Path(),
		TotalRecords:       counts.Total,
		LinkedRecords:      counts.Linked,
		UniqueAuthors:      counts.UniqueAuthors,
		UniqueAffiliations: counts.UniqueAffiliations,
		Keyword:            strings.ToLower(strings.TrimSpace(keyword)),
		Health:             health,
	}
	// The unique index keeps this at zero; a nonzero count means the
	// schema constraint is gone.
	seen := make(map[[4]string]struct{}, len(records))
	for _, record := range records {
		seen[[4]string{record.AuthorName, record.CitingPaper, record.CitedPaper, record.Affiliation}] = struct{}{}
	}
	report.DuplicateTuples = len(records) - len(seen)

	if len(records) > 0 {
		report.Sample = records[0]
	}
	if report.Keyword == "" {
		return report, nil
	}

	for _, record := range records {
		if !strings.Contains(strings.ToLower(record.Affiliation), report.Keyword) {
			continue
		}
		report.KeywordHits++
		if len(report.KeywordExamples) < maxKeywordExamples {
			report.KeywordExamples = append(report.KeywordExamples, KeywordExample{
				AuthorName:  record.AuthorName,
				Affiliation: record.Affiliation,
			})
		}
	}
	return report, nil
}
