package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const recordColumns = `id, entry_id, author_name, citing_paper, cited_paper, affiliation, created_at`

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var entryID *int64
	var createdAt string
	if err := row.Scan(
		&record.ID,
		&entryID,
		&record.AuthorName,
		&record.CitingPaper,
		&record.CitedPaper,
		&record.Affiliation,
		&createdAt,
	); err != nil {
		return nil, err
	}
	record.EntryID = entryID
	record.CreatedAt = parseTimestamp(createdAt)
	return &record, nil
}

// AddRecord persists an affiliation record. It returns false when an
// identical tuple already exists; the insert is suppressed and the caller
// should count it as a duplicate.
func (s *Store) AddRecord(ctx context.Context, record Record) (bool, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(record.AuthorName) == "" {
		return false, fmt.Errorf("author name is required")
	}
	if strings.TrimSpace(record.Affiliation) == "" {
		return false, fmt.Errorf("affiliation is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var entryID any
	if record.EntryID != nil {
		entryID = *record.EntryID
	}
	res, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO affiliation_records (
            entry_id, author_name, citing_paper, cited_paper, affiliation, created_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		entryID,
		record.AuthorName,
		record.CitingPaper,
		record.CitedPaper,
		record.Affiliation,
		timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Records returns all affiliation records ordered by insertion.
func (s *Store) Records(ctx context.Context) ([]*Record, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` FROM affiliation_records ORDER BY id`)
}

// UnlinkedRecords returns records with no author entry linkage, ordered by
// insertion. These come from legacy imports.
func (s *Store) UnlinkedRecords(ctx context.Context) ([]*Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM affiliation_records WHERE entry_id IS NULL ORDER BY id`)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]*Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// LinkRecord sets the author entry linkage on a record.
func (s *Store) LinkRecord(ctx context.Context, recordID, entryID int64) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE affiliation_records SET entry_id = ? WHERE id = ?`,
		entryID,
		recordID,
	)
	if err != nil {
		return fmt.Errorf("link record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", recordID)
	}
	return nil
}

// RecordCounts summarizes the affiliation records table.
type RecordCounts struct {
	Total              int
	Linked             int
	UniqueAuthors      int
	UniqueAffiliations int
}

// CountRecords returns aggregate counts over affiliation records.
func (s *Store) CountRecords(ctx context.Context) (RecordCounts, error) {
	ctx = ensureContext(ctx)
	var counts RecordCounts
	row := s.db.QueryRowContext(ctx, `SELECT
        COUNT(1),
        COUNT(entry_id),
        COUNT(DISTINCT author_name),
        COUNT(DISTINCT affiliation)
    FROM affiliation_records`)
	if err := row.Scan(&counts.Total, &counts.Linked, &counts.UniqueAuthors, &counts.UniqueAffiliations); err != nil {
		return RecordCounts{}, fmt.Errorf("count records: %w", err)
	}
	return counts, nil
}
