package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"citemap/internal/services"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadAuthorsCSVWithHeader(t *testing.T) {
	path := writeFile(t, "authors.csv",
		"author_id,citing_paper,cited_paper\n"+
			"a1,Citing One,Cited One\n"+
			"a2,Citing Two,Cited One\n")

	seeds, err := ReadAuthors(path)
	if err != nil {
		t.Fatalf("ReadAuthors: %v", err)
	}
	if len(seeds) != 2 {
		t.Fatalf("seeds = %d, want 2", len(seeds))
	}
	if seeds[0].AuthorID != "a1" || seeds[1].CitingPaper != "Citing Two" {
		t.Fatalf("unexpected seeds: %+v", seeds)
	}
}

func TestReadAuthorsCSVWithoutHeader(t *testing.T) {
	path := writeFile(t, "authors.csv", "a1,Citing One,Cited One\n")

	seeds, err := ReadAuthors(path)
	if err != nil {
		t.Fatalf("ReadAuthors: %v", err)
	}
	if len(seeds) != 1 || seeds[0].AuthorID != "a1" {
		t.Fatalf("unexpected seeds: %+v", seeds)
	}
}

func TestReadAuthorsJSONLines(t *testing.T) {
	path := writeFile(t, "authors.jsonl",
		`{"author_id":"a1","citing_paper":"Citing One","cited_paper":"Cited One"}`+"\n"+
			"\n"+
			`{"author_id":"a2","citing_paper":"Citing Two","cited_paper":"Cited One"}`+"\n")

	seeds, err := ReadAuthors(path)
	if err != nil {
		t.Fatalf("ReadAuthors: %v", err)
	}
	if len(seeds) != 2 || seeds[1].AuthorID != "a2" {
		t.Fatalf("unexpected seeds: %+v", seeds)
	}
}

func TestReadAuthorsRejectsEmptyFields(t *testing.T) {
	path := writeFile(t, "authors.csv", "a1,,Cited One\n")

	_, err := ReadAuthors(path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestReadAuthorsRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "authors.pkl", "binary junk")

	_, err := ReadAuthors(path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestReadAffiliationsCSV(t *testing.T) {
	path := writeFile(t, "affiliations.csv",
		"author_name,citing_paper,cited_paper,affiliation\n"+
			"Ada,Citing One,Cited One,MIT\n")

	records, err := ReadAffiliations(path)
	if err != nil {
		t.Fatalf("ReadAffiliations: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	record := records[0]
	if record.AuthorName != "Ada" || record.Affiliation != "MIT" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.EntryID != nil {
		t.Fatal("legacy records must not carry an entry link")
	}
}

func TestReadAffiliationsJSONLines(t *testing.T) {
	path := writeFile(t, "affiliations.ndjson",
		`{"author_name":"Ada","citing_paper":"Citing One","cited_paper":"Cited One","affiliation":"MIT"}`+"\n")

	records, err := ReadAffiliations(path)
	if err != nil {
		t.Fatalf("ReadAffiliations: %v", err)
	}
	if len(records) != 1 || records[0].Affiliation != "MIT" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestReadAffiliationsRejectsMissingAffiliation(t *testing.T) {
	path := writeFile(t, "affiliations.csv", "Ada,Citing One,Cited One,\n")

	_, err := ReadAffiliations(path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
