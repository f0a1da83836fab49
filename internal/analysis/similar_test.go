package analysis

import "testing"

func TestSimilarAffiliationsFlagsNearDuplicates(t *testing.T) {
	pairs := SimilarAffiliations([]string{
		"NASA Jet Propulsion Laboratory",
		"Jet Propulsion Laboratory, NASA",
		"Toyota Research Institute",
		"University of Zagreb",
	}, 0.5)

	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1: %v", len(pairs), pairs)
	}
	got := pairs[0]
	if got.A != "NASA Jet Propulsion Laboratory" || got.B != "Jet Propulsion Laboratory, NASA" {
		t.Fatalf("unexpected pair: %+v", got)
	}
	if got.Similarity < 0.9 {
		t.Fatalf("similarity = %f, want near 1", got.Similarity)
	}
}

func TestSimilarAffiliationsIgnoresRepeatsAndEmpty(t *testing.T) {
	pairs := SimilarAffiliations([]string{
		"Tesla",
		"Tesla",
		"  ",
	}, 0.1)
	if len(pairs) != 0 {
		t.Fatalf("pairs = %d, want 0: %v", len(pairs), pairs)
	}
}
