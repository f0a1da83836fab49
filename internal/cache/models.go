package cache

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an author entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFetching  Status = "fetching"
	StatusFetched   Status = "fetched"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusExhausted Status = "exhausted"
)

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusFetched,
	StatusSkipped,
	StatusFailed,
	StatusExhausted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status needs no further lookup work.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFetched, StatusSkipped, StatusExhausted:
		return true
	default:
		return false
	}
}

// Entry represents one citing author awaiting or holding an affiliation lookup.
type Entry struct {
	ID           int64
	Position     int64
	AuthorID     string
	CitingPaper  string
	CitedPaper   string
	Status       Status
	RetryCount   int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EntrySeed carries the fields needed to import a new author entry.
type EntrySeed struct {
	AuthorID    string
	CitingPaper string
	CitedPaper  string
}

// Record represents one affiliation lookup result.
//
// EntryID is nil only for legacy imports whose author linkage was lost
// upstream; the matching diagnostic exists to repair those.
type Record struct {
	ID          int64
	EntryID     *int64
	AuthorName  string
	CitingPaper string
	CitedPaper  string
	Affiliation string
	CreatedAt   time.Time
}

// Run captures one scrape invocation for auditing and the status command.
type Run struct {
	ID         string
	ScholarID  string
	Mode       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Passes     int
	Fetched    int
	Skipped    int
	Failed     int
	Duplicates int
}

// DatabaseHealth captures diagnostic information about the cache database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	TotalEntries     int
	TotalRecords     int
	Error            string
}
