package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = `id, COALESCE(scholar_id, ''), mode, started_at, finished_at,
    passes, fetched, skipped, failed, duplicates`

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt *string
	if err := row.Scan(
		&run.ID,
		&run.ScholarID,
		&run.Mode,
		&startedAt,
		&finishedAt,
		&run.Passes,
		&run.Fetched,
		&run.Skipped,
		&run.Failed,
		&run.Duplicates,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt != nil {
		ts := parseTimestamp(*finishedAt)
		run.FinishedAt = &ts
	}
	return &run, nil
}

// BeginRun records the start of a scrape run.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO scrape_runs (id, scholar_id, mode, started_at) VALUES (?, ?, ?, ?)`,
		run.ID,
		nullableString(run.ScholarID),
		run.Mode,
		startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters for a scrape run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE scrape_runs
         SET finished_at = ?, passes = ?, fetched = ?, skipped = ?, failed = ?, duplicates = ?
         WHERE id = ?`,
		finished.Format(time.RFC3339Nano),
		run.Passes,
		run.Fetched,
		run.Skipped,
		run.Failed,
		run.Duplicates,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %q not found", run.ID)
	}
	return nil
}

// LastRun returns the most recently started run, or nil when none exist.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM scrape_runs ORDER BY started_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	return run, nil
}

// DuplicatesSuppressed sums the duplicate counters across all recorded runs.
func (s *Store) DuplicatesSuppressed(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var total int64
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(duplicates), 0) FROM scrape_runs`)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum run duplicates: %w", err)
	}
	return total, nil
}
