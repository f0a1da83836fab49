package report

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"citemap/internal/cache"
	"citemap/internal/scholar"
)

// Citation is one author-to-paper link inside an affiliation group.
type Citation struct {
	Author      string
	CitingPaper string
	CitedPaper  string
}

// AffiliationGroup collects the unique authors and citations recorded for
// one affiliation string.
type AffiliationGroup struct {
	Affiliation string
	Authors     []string
	Citations   []Citation
}

// AuthorCount returns the number of unique authors in the group.
func (g AffiliationGroup) AuthorCount() int { return len(g.Authors) }

// Summary ranks affiliations by unique author count.
type Summary struct {
	Groups             []AffiliationGroup
	UniqueAffiliations int
	TotalAuthors       int
}

// BuildSummary groups affiliation records by affiliation. Records carrying
// the no-author marker are excluded.
func BuildSummary(ctx context.Context, store *cache.Store) (*Summary, error) {
	records, err := store.Records(ctx)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]map[string]struct{})
	citations := make(map[string][]Citation)
	for _, record := range records {
		if record.AuthorName == scholar.NoAuthorFound {
			continue
		}
		if authors[record.Affiliation] == nil {
			authors[record.Affiliation] = make(map[string]struct{})
		}
		authors[record.Affiliation][record.AuthorName] = struct{}{}
		citations[record.Affiliation] = append(citations[record.Affiliation], Citation{
			Author:      record.AuthorName,
			CitingPaper: record.CitingPaper,
			CitedPaper:  record.CitedPaper,
		})
	}

	summary := &Summary{UniqueAffiliations: len(authors)}
	for affiliation, names := range authors {
		group := AffiliationGroup{
			Affiliation: affiliation,
			Authors:     make([]string, 0, len(names)),
			Citations:   citations[affiliation],
		}
		for name := range names {
			group.Authors = append(group.Authors, name)
		}
		sort.Strings(group.Authors)
		summary.Groups = append(summary.Groups, group)
		summary.TotalAuthors += len(group.Authors)
	}
	sort.Slice(summary.Groups, func(i, j int) bool {
		a, b := summary.Groups[i], summary.Groups[j]
		if len(a.Authors) != len(b.Authors) {
			return len(a.Authors) > len(b.Authors)
		}
		return a.Affiliation < b.Affiliation
	})
	return summary, nil
}

// Top returns the first n groups, or all of them when n <= 0 or exceeds
// the group count.
func (s *Summary) Top(n int) []AffiliationGroup {
	if n <= 0 || n > len(s.Groups) {
		return s.Groups
	}
	return s.Groups[:n]
}

// Keyword returns the groups whose affiliation contains the keyword,
// compared case-insensitively.
func (s *Summary) Keyword(keyword string) []AffiliationGroup {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}
	var matched []AffiliationGroup
	for _, group := range s.Groups {
		if strings.Contains(folder.String(group.Affiliation), needle) {
			matched = append(matched, group)
		}
	}
	return matched
}
