package analysis

import (
	"context"

	"citemap/internal/cache"
)

// Match classification for a legacy affiliation record.
const (
	MatchUnique    = "unique"
	MatchAmbiguous = "ambiguous"
	MatchUnmatched = "unmatched"
)

// MatchCase is the matching outcome for one unlinked affiliation record.
type MatchCase struct {
	Record     *cache.Record
	Class      string
	Candidates []*cache.Entry
	Repaired   bool
}

// MatchingReport classifies affiliation records that carry no entry link.
// Legacy imports dropped the author ID, so the only join key left is the
// (citing, cited) paper pair.
type MatchingReport struct {
	TotalUnlinked int
	Unique        int
	Ambiguous     int
	Unmatched     int
	Repaired      int
	Cases         []MatchCase
}

// Matching matches unlinked affiliation records back to author entries via
// their (citing, cited) paper pair. With repair set, unique matches are
// written back to the store.
func Matching(ctx context.Context, store *cache.Store, repair bool) (*MatchingReport, error) {
	entries, err := store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	unlinked, err := store.UnlinkedRecords(ctx)
	if err != nil {
		return nil, err
	}

	type pair struct {
		citing, cited string
	}
	byPair := make(map[pair][]*cache.Entry, len(entries))
	for _, entry := range entries {
		key := pair{entry.CitingPaper, entry.CitedPaper}
		byPair[key] = append(byPair[key], entry)
	}

	report := &MatchingReport{TotalUnlinked: len(unlinked)}
	for _, record := range unlinked {
		matchCase := MatchCase{
			Record:     record,
			Candidates: byPair[pair{record.CitingPaper, record.CitedPaper}],
		}
		switch len(matchCase.Candidates) {
		case 0:
			matchCase.Class = MatchUnmatched
			report.Unmatched++
		case 1:
			matchCase.Class = MatchUnique
			report.Unique++
			if repair {
				if err := store.LinkRecord(ctx, record.ID, matchCase.Candidates[0].ID); err != nil {
					return nil, err
				}
				matchCase.Repaired = true
				report.Repaired++
			}
		default:
			matchCase.Class = MatchAmbiguous
			report.Ambiguous++
		}
		report.Cases = append(report.Cases, matchCase)
	}
	return report, nil
}
