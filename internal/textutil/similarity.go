package textutil

import (
	"math"
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint is a normalized term vector for one affiliation string.
type Fingerprint struct {
	terms map[string]float64
	norm  float64
}

// NewFingerprint builds a term-frequency fingerprint from an affiliation
// string. Returns nil when the text yields no usable tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		terms: counts,
		norm:  math.Sqrt(norm),
	}
}

// Tokenize splits an affiliation into lowercase terms. Single-character
// fragments are dropped; two-letter acronyms are kept.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 2 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TermCount returns the number of distinct terms in the fingerprint.
func (f *Fingerprint) TermCount() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

// WithIDF reweights the fingerprint by inverse document frequency so that
// filler terms shared by most affiliations ("university", "institute") stop
// dominating the comparison. Terms absent from the map keep their raw weight.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.terms))
	var norm float64
	for term, count := range f.terms {
		w := count
		if idfVal, ok := idf[term]; ok {
			w *= idfVal
		}
		if w == 0 {
			continue
		}
		weighted[term] = w
		norm += w * w
	}
	if len(weighted) == 0 {
		return nil
	}
	return &Fingerprint{
		terms: weighted,
		norm:  math.Sqrt(norm),
	}
}

// Corpus accumulates document frequencies across a set of affiliations.
type Corpus struct {
	docCount int
	docFreq  map[string]int
}

func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int)}
}

// Add registers a fingerprint's distinct terms.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docCount++
	for term := range fp.terms {
		c.docFreq[term]++
	}
}

// IDF returns log((N+1)/(1+df)) per term observed in the corpus.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docCount == 0 {
		return nil
	}
	idf := make(map[string]float64, len(c.docFreq))
	n := float64(c.docCount)
	for term, df := range c.docFreq {
		idf[term] = math.Log((n + 1) / (1 + float64(df)))
	}
	return idf
}

// CosineSimilarity returns the cosine of the angle between two fingerprints,
// or 0 when either side is nil or empty.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for term, weight := range a.terms {
		if other, ok := b.terms[term]; ok {
			dot += weight * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}
