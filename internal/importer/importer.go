package importer

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"citemap/internal/cache"
	"citemap/internal/services"
)

// ReadAuthors parses a file of (author_id, citing_paper, cited_paper)
// triples. CSV and JSON-lines formats are detected by extension; file
// order becomes entry position order.
func ReadAuthors(path string) ([]cache.EntrySeed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open authors file: %w", err)
	}
	defer file.Close()

	switch detectFormat(path) {
	case formatCSV:
		return readAuthorsCSV(file)
	case formatJSONLines:
		return readAuthorsJSON(file)
	default:
		return nil, services.Wrap(services.ErrValidation, "importer", "read_authors",
			fmt.Sprintf("unsupported file format %q (want .csv, .json, .jsonl, or .ndjson)", filepath.Ext(path)), nil)
	}
}

// ReadAffiliations parses a file of legacy (author_name, citing_paper,
// cited_paper, affiliation) tuples. The resulting records carry no entry
// link; the matching diagnostic classifies and repairs them.
func ReadAffiliations(path string) ([]cache.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open affiliations file: %w", err)
	}
	defer file.Close()

	switch detectFormat(path) {
	case formatCSV:
		return readAffiliationsCSV(file)
	case formatJSONLines:
		return readAffiliationsJSON(file)
	default:
		return nil, services.Wrap(services.ErrValidation, "importer", "read_affiliations",
			fmt.Sprintf("unsupported file format %q (want .csv, .json, .jsonl, or .ndjson)", filepath.Ext(path)), nil)
	}
}

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatCSV
	formatJSONLines
)

func detectFormat(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV
	case ".json", ".jsonl", ".ndjson":
		return formatJSONLines
	default:
		return formatUnknown
	}
}

func readAuthorsCSV(r io.Reader) ([]cache.EntrySeed, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	var seeds []cache.EntrySeed
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse authors csv: %w", err)
		}
		line++
		if line == 1 && isAuthorHeader(row) {
			continue
		}
		seed := cache.EntrySeed{
			AuthorID:    strings.TrimSpace(row[0]),
			CitingPaper: strings.TrimSpace(row[1]),
			CitedPaper:  strings.TrimSpace(row[2]),
		}
		if err := validateSeed(seed, line); err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func readAuthorsJSON(r io.Reader) ([]cache.EntrySeed, error) {
	var seeds []cache.EntrySeed
	line := 0
	scanner := newLineScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row struct {
			AuthorID    string `json:"author_id"`
			CitingPaper string `json:"citing_paper"`
			CitedPaper  string `json:"cited_paper"`
		}
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("parse authors json line %d: %w", line, err)
		}
		seed := cache.EntrySeed{
			AuthorID:    strings.TrimSpace(row.AuthorID),
			CitingPaper: strings.TrimSpace(row.CitingPaper),
			CitedPaper:  strings.TrimSpace(row.CitedPaper),
		}
		if err := validateSeed(seed, line); err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read authors file: %w", err)
	}
	return seeds, nil
}

func readAffiliationsCSV(r io.Reader) ([]cache.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	var records []cache.Record
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse affiliations csv: %w", err)
		}
		line++
		if line == 1 && isAffiliationHeader(row) {
			continue
		}
		record := cache.Record{
			AuthorName:  strings.TrimSpace(row[0]),
			CitingPaper: strings.TrimSpace(row[1]),
			CitedPaper:  strings.TrimSpace(row[2]),
			Affiliation: strings.TrimSpace(row[3]),
		}
		if err := validateRecord(record, line); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func readAffiliationsJSON(r io.Reader) ([]cache.Record, error) {
	var records []cache.Record
	line := 0
	scanner := newLineScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row struct {
			AuthorName  string `json:"author_name"`
			CitingPaper string `json:"citing_paper"`
			CitedPaper  string `json:"cited_paper"`
			Affiliation string `json:"affiliation"`
		}
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("parse affiliations json line %d: %w", line, err)
		}
		record := cache.Record{
			AuthorName:  strings.TrimSpace(row.AuthorName),
			CitingPaper: strings.TrimSpace(row.CitingPaper),
			CitedPaper:  strings.TrimSpace(row.CitedPaper),
			Affiliation: strings.TrimSpace(row.Affiliation),
		}
		if err := validateRecord(record, line); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read affiliations file: %w", err)
	}
	return records, nil
}

func validateSeed(seed cache.EntrySeed, line int) error {
	if seed.AuthorID == "" || seed.CitingPaper == "" || seed.CitedPaper == "" {
		return services.Wrap(services.ErrValidation, "importer", "read_authors",
			fmt.Sprintf("line %d: author_id, citing_paper, and cited_paper must all be present", line), nil)
	}
	return nil
}

func validateRecord(record cache.Record, line int) error {
	if record.AuthorName == "" || record.CitingPaper == "" || record.CitedPaper == "" || record.Affiliation == "" {
		return services.Wrap(services.ErrValidation, "importer", "read_affiliations",
			fmt.Sprintf("line %d: author_name, citing_paper, cited_paper, and affiliation must all be present", line), nil)
	}
	return nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Paper titles can make lines long.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

func isAuthorHeader(row []string) bool {
	return len(row) == 3 && normalizeHeader(row[0]) == "author_id"
}

func isAffiliationHeader(row []string) bool {
	return len(row) == 4 && normalizeHeader(row[0]) == "author_name"
}

func normalizeHeader(field string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(field)), " ", "_")
}
