package analysis

import (
	"context"
	"sort"

	"citemap/internal/cache"
)

// DuplicateGroup describes one affiliation tuple that appears more than once.
type DuplicateGroup struct {
	AuthorName  string
	CitingPaper string
	CitedPaper  string
	Affiliation string
	Count       int
}

// DuplicatesReport accounts for duplicate affiliation tuples. The store
// rejects duplicates at insert, so stored groups indicate a schema
// regression; the suppressed counter carries the duplicates the scrape
// engine declined to store.
type DuplicatesReport struct {
	TotalRecords  int
	UniqueRecords int
	StoredGroups  []DuplicateGroup
	Suppressed    int64
}

// Duplicates builds the duplicate report over stored records and run history.
func Duplicates(ctx context.Context, store *cache.Store) (*DuplicatesReport, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return nil, err
	}
	suppressed, err := store.DuplicatesSuppressed(ctx)
	if err != nil {
		return nil, err
	}

	type tuple struct {
		author, citing, cited, affiliation string
	}
	seen := make(map[tuple]int, len(records))
	for _, record := range records {
		seen[tuple{record.AuthorName, record.CitingPaper, record.CitedPaper, record.Affiliation}]++
	}

	report := &DuplicatesReport{
		TotalRecords:  len(records),
		UniqueRecords: len(seen),
		Suppressed:    suppressed,
	}
	for key, count := range seen {
		if count < 2 {
			continue
		}
		report.StoredGroups = append(report.StoredGroups, DuplicateGroup{
			AuthorName:  key.author,
			CitingPaper: key.citing,
			CitedPaper:  key.cited,
			Affiliation: key.affiliation,
			Count:       count,
		})
	}
	sort.Slice(report.StoredGroups, func(i, j int) bool {
		a, b := report.StoredGroups[i], report.StoredGroups[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.AuthorName < b.AuthorName
	})
	return report, nil
}
