package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("NASA Jet Propulsion Laboratory (JPL), USA")
	want := []string{"nasa", "jet", "propulsion", "laboratory", "jpl", "usa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeKeepsShortAcronyms(t *testing.T) {
	got := Tokenize("Plus AI, a startup")
	want := []string{"plus", "ai", "startup"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestNewFingerprintEmpty(t *testing.T) {
	if fp := NewFingerprint("  ? "); fp != nil {
		t.Fatalf("expected nil fingerprint, got %d terms", fp.TermCount())
	}
	if CosineSimilarity(nil, NewFingerprint("MIT CSAIL")) != 0 {
		t.Fatal("nil fingerprint should compare as 0")
	}
}

func TestCosineSimilarityIdenticalSpellings(t *testing.T) {
	a := NewFingerprint("NASA Jet Propulsion Laboratory")
	b := NewFingerprint("nasa jet propulsion laboratory")
	if sim := CosineSimilarity(a, b); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("similarity = %f, want 1", sim)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	a := NewFingerprint("Toyota Research Institute")
	b := NewFingerprint("University of Zagreb")
	if sim := CosineSimilarity(a, b); sim != 0 {
		t.Fatalf("similarity = %f, want 0", sim)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := NewFingerprint("German Aerospace Center DLR")
	b := NewFingerprint("DLR German Aerospace Center, Germany")
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Fatal("similarity is not symmetric")
	}
	if CosineSimilarity(a, b) <= 0.5 {
		t.Fatalf("reordered spelling should score high, got %f", CosineSimilarity(a, b))
	}
}

func TestWithIDFDownweightsFillerTerms(t *testing.T) {
	corpus := NewCorpus()
	spellings := []string{
		"University of Michigan",
		"University of Zagreb",
		"University of Tokyo",
		"Tesla",
	}
	prints := make([]*Fingerprint, len(spellings))
	for i, s := range spellings {
		prints[i] = NewFingerprint(s)
		corpus.Add(prints[i])
	}
	idf := corpus.IDF()

	raw := CosineSimilarity(prints[0], prints[1])
	weighted := CosineSimilarity(prints[0].WithIDF(idf), prints[1].WithIDF(idf))
	if weighted >= raw {
		t.Fatalf("IDF weighting should lower the shared-filler score: raw %f, weighted %f", raw, weighted)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"NASA":        "nasa",
		"  Plus AI":   "plus_ai",
		"CNR-IEIIT":   "cnr-ieiit",
		"??":          "fallback",
		"":            "fallback",
		"Argotec, IT": "argotec__it",
	}
	for value, want := range cases {
		if got := Slug(value, "fallback"); got != want {
			t.Errorf("Slug(%q) = %q, want %q", value, got, want)
		}
	}
}
