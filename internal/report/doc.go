// Package report groups affiliation records into human-facing summaries:
// affiliation rankings, research-center tables built from substring rule
// sets, and CSV exports under the configured results directory.
package report
