package analysis

import (
	"context"
	"sort"

	"citemap/internal/cache"
)

// PairGroup lists the author IDs sharing one (citing, cited) paper pair.
type PairGroup struct {
	CitingPaper string
	CitedPaper  string
	AuthorIDs   []string
}

// UniquenessReport examines the imported author entries: distinct author
// IDs, shared paper pairs, and whether the full tuples are unique.
type UniquenessReport struct {
	TotalEntries       int
	UniqueAuthorIDs    int
	DuplicateAuthorIDs int
	UniquePairs        int
	DuplicatePairs     int
	SharedPairs        []PairGroup
	UniqueTuples       int
	AllTuplesUnique    bool
}

// Uniqueness builds the uniqueness report over all author entries.
//
// Duplicate author IDs are expected: one author citing several papers
// appears once per citation. Shared paper pairs are the cases the matching
// diagnostic cannot resolve for legacy records.
func Uniqueness(ctx context.Context, store *cache.Store) (*UniquenessReport, error) {
	entries, err := store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	type pair struct {
		citing, cited string
	}
	type fullTuple struct {
		authorID, citing, cited string
	}

	authorIDs := make(map[string]struct{}, len(entries))
	pairs := make(map[pair][]string, len(entries))
	tuples := make(map[fullTuple]struct{}, len(entries))
	for _, entry := range entries {
		authorIDs[entry.AuthorID] = struct{}{}
		key := pair{entry.CitingPaper, entry.CitedPaper}
		pairs[key] = append(pairs[key], entry.AuthorID)
		tuples[fullTuple{entry.AuthorID, entry.CitingPaper, entry.CitedPaper}] = struct{}{}
	}

	report := &UniquenessReport{
		TotalEntries:       len(entries),
		UniqueAuthorIDs:    len(authorIDs),
		DuplicateAuthorIDs: len(entries) - len(authorIDs),
		UniquePairs:        len(pairs),
		DuplicatePairs:     len(entries) - len(pairs),
		UniqueTuples:       len(tuples),
		AllTuplesUnique:    len(tuples) == len(entries),
	}
	for key, ids := range pairs {
		if len(ids) < 2 {
			continue
		}
		report.SharedPairs = append(report.SharedPairs, PairGroup{
			CitingPaper: key.citing,
			CitedPaper:  key.cited,
			AuthorIDs:   ids,
		})
	}
	sort.Slice(report.SharedPairs, func(i, j int) bool {
		a, b := report.SharedPairs[i], report.SharedPairs[j]
		if len(a.AuthorIDs) != len(b.AuthorIDs) {
			return len(a.AuthorIDs) > len(b.AuthorIDs)
		}
		if a.CitingPaper != b.CitingPaper {
			return a.CitingPaper < b.CitingPaper
		}
		return a.CitedPaper < b.CitedPaper
	})
	return report, nil
}
