package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const entryColumns = `id, position, author_id, citing_paper, cited_paper, status,
    retry_count, COALESCE(error_message, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var status, createdAt, updatedAt string
	if err := row.Scan(
		&entry.ID,
		&entry.Position,
		&entry.AuthorID,
		&entry.CitingPaper,
		&entry.CitedPaper,
		&status,
		&entry.RetryCount,
		&entry.ErrorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	entry.Status = Status(status)
	entry.CreatedAt = parseTimestamp(createdAt)
	entry.UpdatedAt = parseTimestamp(updatedAt)
	return &entry, nil
}

// ImportEntries inserts author entries in order, assigning positions after the
// current maximum. Entries whose full tuple already exists are skipped.
// Returns the number of inserted and skipped entries.
func (s *Store) ImportEntries(ctx context.Context, seeds []EntrySeed) (int, int, error) {
	ctx = ensureContext(ctx)
	if len(seeds) == 0 {
		return 0, 0, nil
	}
	for i, seed := range seeds {
		if strings.TrimSpace(seed.AuthorID) == "" ||
			strings.TrimSpace(seed.CitingPaper) == "" ||
			strings.TrimSpace(seed.CitedPaper) == "" {
			return 0, 0, fmt.Errorf("entry %d: author id, citing paper, and cited paper are required", i)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var nextPosition int64
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM author_entries`)
	if err := row.Scan(&nextPosition); err != nil {
		return 0, 0, fmt.Errorf("next position: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	added := 0
	skipped := 0
	for _, seed := range seeds {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO author_entries (
                position, author_id, citing_paper, cited_paper, status, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			nextPosition,
			seed.AuthorID,
			seed.CitingPaper,
			seed.CitedPaper,
			StatusPending,
			timestamp,
			timestamp,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("insert entry: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			skipped++
			continue
		}
		added++
		nextPosition++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import: %w", err)
	}
	return added, skipped, nil
}

// GetEntry fetches an author entry by identifier.
func (s *Store) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM author_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns entries filtered by optional statuses, ordered by position.
func (s *Store) ListEntries(ctx context.Context, statuses ...Status) ([]*Entry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + entryColumns + ` FROM author_entries`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ClaimNextPending atomically moves the next pending entry to fetching and
// returns it, or nil when no pending entries remain. Concurrent workers each
// receive distinct entries.
func (s *Store) ClaimNextPending(ctx context.Context) (*Entry, error) {
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	var claimed *Entry
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			`UPDATE author_entries SET status = ?, updated_at = ?
             WHERE id = (
                 SELECT id FROM author_entries WHERE status = ? ORDER BY position LIMIT 1
             )
             RETURNING `+entryColumns,
			StatusFetching,
			timestamp,
			StatusPending,
		)
		entry, scanErr := scanEntry(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			claimed = nil
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		claimed = entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim pending: %w", err)
	}
	return claimed, nil
}

func (s *Store) setEntryStatus(ctx context.Context, id int64, status Status, errorMessage string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE author_entries SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		nullableString(errorMessage),
		timestamp,
		id,
	)
	if err != nil {
		return fmt.Errorf("set entry status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d not found", id)
	}
	return nil
}

// MarkFetched records a successful lookup.
func (s *Store) MarkFetched(ctx context.Context, id int64) error {
	return s.setEntryStatus(ctx, id, StatusFetched, "")
}

// MarkSkipped records an entry with no resolvable author.
func (s *Store) MarkSkipped(ctx context.Context, id int64) error {
	return s.setEntryStatus(ctx, id, StatusSkipped, "")
}

// MarkFailed records a failed lookup and increments the retry counter.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE author_entries
         SET status = ?, error_message = ?, retry_count = retry_count + 1, updated_at = ?
         WHERE id = ?`,
		StatusFailed,
		nullableString(message),
		timestamp,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d not found", id)
	}
	return nil
}

// RequeueFailed moves failed entries back to pending for a retry pass and
// returns how many were requeued.
func (s *Store) RequeueFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE author_entries SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending,
		timestamp,
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("requeue failed: %w", err)
	}
	return res.RowsAffected()
}

// ExhaustFailed marks entries that are still failed after the final retry
// pass as exhausted and returns how many were affected.
func (s *Store) ExhaustFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE author_entries SET status = ?, updated_at = ? WHERE status = ?`,
		StatusExhausted,
		timestamp,
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("exhaust failed: %w", err)
	}
	return res.RowsAffected()
}

// RequeueExhausted moves exhausted entries back to pending so a later scrape
// can try them again.
func (s *Store) RequeueExhausted(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE author_entries SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
		StatusPending,
		timestamp,
		StatusExhausted,
	)
	if err != nil {
		return 0, fmt.Errorf("requeue exhausted: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckFetching rolls entries left in fetching back to pending.
func (s *Store) ResetStuckFetching(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE author_entries SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending,
		timestamp,
		StatusFetching,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck fetching: %w", err)
	}
	return res.RowsAffected()
}
