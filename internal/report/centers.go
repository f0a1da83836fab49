package report

import (
	"context"
	"sort"

	"citemap/internal/cache"
	"citemap/internal/scholar"
)

// CenterRow is one roster line of the research-center table.
type CenterRow struct {
	Institution       string
	CitingPapers      int
	CitingResearchers int
}

// CenterDetail extends a row with the researcher names and the raw
// affiliation strings that matched.
type CenterDetail struct {
	Institution       string
	CitingPapers      int
	CitingResearchers int
	Researchers       []string
	RawAffiliations   []string
}

// CenterReport tabulates citations per research institution. Rows follow
// the roster order and include zero-count institutions; Details carries
// only matched institutions, sorted by researcher count. Overflow matches
// (the NASA centers outside JPL and Ames) are reported separately.
type CenterReport struct {
	Set                  string
	Rows                 []CenterRow
	Details              []CenterDetail
	OverflowCount        int
	OverflowAffiliations []string
}

// BuildCenters classifies every affiliation record against the rule set
// and tabulates distinct citing papers and researchers per institution.
func BuildCenters(ctx context.Context, store *cache.Store, rules RuleSet) (*CenterReport, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		papers       map[string]struct{}
		researchers  map[string]struct{}
		affiliations map[string]struct{}
	}
	buckets := make(map[string]*bucket)
	overflow := make(map[string]struct{})
	overflowCount := 0

	for _, record := range records {
		if record.AuthorName == scholar.NoAuthorFound {
			continue
		}
		institution, ok := rules.Categorize(record.Affiliation)
		if !ok {
			continue
		}
		if rules.IsOverflow(institution) {
			overflowCount++
			overflow[record.Affiliation] = struct{}{}
			continue
		}
		b := buckets[institution]
		if b == nil {
			b = &bucket{
				papers:       make(map[string]struct{}),
				researchers:  make(map[string]struct{}),
				affiliations: make(map[string]struct{}),
			}
			buckets[institution] = b
		}
		b.papers[record.CitingPaper] = struct{}{}
		b.researchers[record.AuthorName] = struct{}{}
		b.affiliations[record.Affiliation] = struct{}{}
	}

	report := &CenterReport{
		Set:                  rules.Name,
		OverflowCount:        overflowCount,
		OverflowAffiliations: sortedKeys(overflow),
	}
	for _, institution := range rules.Roster {
		row := CenterRow{Institution: institution}
		if b := buckets[institution]; b != nil {
			row.CitingPapers = len(b.papers)
			row.CitingResearchers = len(b.researchers)
		}
		report.Rows = append(report.Rows, row)
	}
	for institution, b := range buckets {
		report.Details = append(report.Details, CenterDetail{
			Institution:       institution,
			CitingPapers:      len(b.papers),
			CitingResearchers: len(b.researchers),
			Researchers:       sortedKeys(b.researchers),
			RawAffiliations:   sortedKeys(b.affiliations),
		})
	}
	sort.Slice(report.Details, func(i, j int) bool {
		a, b := report.Details[i], report.Details[j]
		if a.CitingResearchers != b.CitingResearchers {
			return a.CitingResearchers > b.CitingResearchers
		}
		return a.Institution < b.Institution
	})
	return report, nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
