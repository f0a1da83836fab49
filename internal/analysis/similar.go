package analysis

import (
	"sort"

	"citemap/internal/textutil"
)

// SimilarPair flags two affiliation spellings that likely name the same
// institution.
type SimilarPair struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Similarity float64 `json:"similarity"`
}

// SimilarAffiliations compares distinct affiliation spellings pairwise using
// TF-IDF weighted cosine similarity and returns pairs scoring at or above
// threshold, highest first. Self-reported affiliations fragment across
// spellings of the same institution, which splits the per-affiliation counts;
// the flagged pairs guide manual cleanup.
func SimilarAffiliations(affiliations []string, threshold float64) []SimilarPair {
	type doc struct {
		text string
		fp   *textutil.Fingerprint
	}

	corpus := textutil.NewCorpus()
	docs := make([]doc, 0, len(affiliations))
	seen := make(map[string]struct{}, len(affiliations))
	for _, text := range affiliations {
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		fp := textutil.NewFingerprint(text)
		if fp == nil {
			continue
		}
		corpus.Add(fp)
		docs = append(docs, doc{text: text, fp: fp})
	}

	idf := corpus.IDF()
	for i := range docs {
		docs[i].fp = docs[i].fp.WithIDF(idf)
	}

	var pairs []SimilarPair
	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			sim := textutil.CosineSimilarity(docs[i].fp, docs[j].fp)
			if sim >= threshold {
				pairs = append(pairs, SimilarPair{
					A:          docs[i].text,
					B:          docs[j].text,
					Similarity: sim,
				})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		return pairs[i].A < pairs[j].A
	})
	return pairs
}
