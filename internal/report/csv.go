package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"citemap/internal/textutil"
)

// CitationInfo is one geocoded citation row for citation_info.csv.
type CitationInfo struct {
	Author      string
	Affiliation string
	CitingPaper string
	CitedPaper  string
	Latitude    float64
	Longitude   float64
	Located     bool
}

// Exporter writes report CSVs under the results directory.
type Exporter struct {
	resultsDir string
}

// NewExporter creates an exporter rooted at the results directory.
func NewExporter(resultsDir string) *Exporter {
	return &Exporter{resultsDir: resultsDir}
}

// WriteSummary writes affiliation_summary.csv: one row per affiliation
// sorted by author count, authors joined with "; ".
func (e *Exporter) WriteSummary(summary *Summary) (string, error) {
	rows := [][]string{{"Affiliation", "Author Count", "Authors"}}
	for _, group := range summary.Groups {
		rows = append(rows, []string{
			group.Affiliation,
			strconv.Itoa(group.AuthorCount()),
			strings.Join(group.Authors, "; "),
		})
	}
	return e.write("affiliation_summary.csv", rows)
}

// WriteKeyword writes the per-citation rows for affiliations matching the
// keyword, e.g. nasa_affiliations.csv.
func (e *Exporter) WriteKeyword(summary *Summary, keyword string) (string, error) {
	groups := summary.Keyword(keyword)
	rows := [][]string{{"Affiliation", "Author", "Citing Paper", "Cited Paper"}}
	for _, group := range groups {
		for _, citation := range group.Citations {
			rows = append(rows, []string{
				group.Affiliation,
				citation.Author,
				citation.CitingPaper,
				citation.CitedPaper,
			})
		}
	}
	return e.write(keywordFilename(keyword), rows)
}

// WriteCenters writes the roster table, e.g. government_research_centers.csv.
func (e *Exporter) WriteCenters(report *CenterReport) (string, error) {
	rows := [][]string{{"Institution", "# of citing papers", "# of citing researchers"}}
	for _, row := range report.Rows {
		rows = append(rows, []string{
			row.Institution,
			strconv.Itoa(row.CitingPapers),
			strconv.Itoa(row.CitingResearchers),
		})
	}
	return e.write(report.Set+"_research_centers.csv", rows)
}

// WriteCentersDetailed writes the matched institutions with researcher
// names and raw affiliation strings.
func (e *Exporter) WriteCentersDetailed(report *CenterReport) (string, error) {
	rows := [][]string{{
		"Institution", "# of citing papers", "# of citing researchers",
		"Researchers", "Raw Affiliations",
	}}
	for _, detail := range report.Details {
		rows = append(rows, []string{
			detail.Institution,
			strconv.Itoa(detail.CitingPapers),
			strconv.Itoa(detail.CitingResearchers),
			strings.Join(detail.Researchers, "; "),
			strings.Join(detail.RawAffiliations, " | "),
		})
	}
	return e.write(report.Set+"_research_centers_detailed.csv", rows)
}

// WriteCitationInfo writes citation_info.csv. Rows that could not be
// geocoded keep empty coordinate columns.
func (e *Exporter) WriteCitationInfo(infos []CitationInfo) (string, error) {
	rows := [][]string{{
		"Author", "Affiliation", "Citing Paper", "Cited Paper", "Latitude", "Longitude",
	}}
	for _, info := range infos {
		lat, lon := "", ""
		if info.Located {
			lat = strconv.FormatFloat(info.Latitude, 'f', -1, 64)
			lon = strconv.FormatFloat(info.Longitude, 'f', -1, 64)
		}
		rows = append(rows, []string{
			info.Author, info.Affiliation, info.CitingPaper, info.CitedPaper, lat, lon,
		})
	}
	return e.write("citation_info.csv", rows)
}

func (e *Exporter) write(name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(e.resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}
	path := filepath.Join(e.resultsDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return "", fmt.Errorf("flush %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

func keywordFilename(keyword string) string {
	return textutil.Slug(keyword, "keyword") + "_affiliations.csv"
}
