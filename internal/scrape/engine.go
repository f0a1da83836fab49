package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"citemap/internal/cache"
	"citemap/internal/config"
	"citemap/internal/logging"
	"citemap/internal/scholar"
	"citemap/internal/services"
)

// ErrAlreadyRunning indicates another scrape holds the cache lock.
var ErrAlreadyRunning = errors.New("another scrape is already running against this cache")

// Summary reports the outcome of a scrape run.
type Summary struct {
	RunID      string
	Mode       string
	Passes     int
	Fetched    int
	Skipped    int
	Failed     int
	Duplicates int
	Exhausted  int
	Remaining  int
}

// Engine coordinates incremental affiliation scraping.
type Engine struct {
	cfg    *config.Config
	store  *cache.Store
	client scholar.Lookup
	logger *slog.Logger
	pacer  *pacer
	lock   *flock.Flock

	fetched    atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	duplicates atomic.Int64
	processed  atomic.Int64
}

// New constructs a scrape engine.
func New(cfg *config.Config, store *cache.Store, client scholar.Lookup, logger *slog.Logger) (*Engine, error) {
	if cfg == nil || store == nil || client == nil {
		return nil, errors.New("scrape engine requires config, store, and client")
	}
	logger = logging.NewComponentLogger(logger, "scrape")

	lockPath := filepath.Join(cfg.Paths.CacheDir, "scrape.lock")
	return &Engine{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logger,
		pacer: newPacer(
			time.Duration(cfg.Scholar.MinDelay)*time.Second,
			time.Duration(cfg.Scholar.MaxDelay)*time.Second,
		),
		lock: flock.New(lockPath),
	}, nil
}

// Mode returns the configured affiliation selection mode.
func (e *Engine) Mode() string {
	if e.cfg.Scholar.Conservative {
		return "conservative"
	}
	return "aggressive"
}

// Run executes the scrape: one full pass over pending entries followed by
// retry passes over failures. Interruption is safe; every outcome is
// persisted before the next lookup starts.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	ok, err := e.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire scrape lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = e.lock.Unlock() }()

	run := cache.Run{
		ID:        uuid.NewString(),
		ScholarID: e.cfg.Scholar.ScholarID,
		Mode:      e.Mode(),
		StartedAt: time.Now().UTC(),
	}
	if err := e.store.BeginRun(ctx, run); err != nil {
		return nil, err
	}
	ctx = services.WithRunID(ctx, run.ID)

	e.logger.InfoContext(ctx, "scrape started",
		logging.String("mode", run.Mode),
		logging.Int("workers", e.cfg.Scrape.Workers),
		logging.Int("max_retry_passes", e.cfg.Scrape.MaxRetryPasses))

	passes := 0
	runErr := func() error {
		for pass := 1; pass <= 1+e.cfg.Scrape.MaxRetryPasses; pass++ {
			if pass > 1 {
				requeued, err := e.store.RequeueFailed(ctx)
				if err != nil {
					return err
				}
				if requeued == 0 {
					return nil
				}
				e.logger.InfoContext(ctx, "retry pass starting",
					logging.Int(logging.FieldPass, pass),
					logging.Int64("entries", requeued))
			}
			passes = pass
			if err := e.runPass(services.WithPass(ctx, pass)); err != nil {
				return err
			}
		}
		return nil
	}()

	exhausted := int64(0)
	if runErr == nil {
		exhausted, err = e.store.ExhaustFailed(ctx)
		if err != nil {
			runErr = err
		} else if exhausted > 0 {
			e.logger.WarnContext(ctx, "entries exhausted after final retry pass",
				logging.Int64("entries", exhausted),
				logging.String(logging.FieldEventType, "scrape_exhausted"))
		}
	}

	summary := &Summary{
		RunID:      run.ID,
		Mode:       run.Mode,
		Passes:     passes,
		Fetched:    int(e.fetched.Load()),
		Skipped:    int(e.skipped.Load()),
		Failed:     int(e.failed.Load()),
		Duplicates: int(e.duplicates.Load()),
		Exhausted:  int(exhausted),
	}

	// The run row is finished even when the run was interrupted, so the
	// status command reflects partial progress.
	finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	run.Passes = summary.Passes
	run.Fetched = summary.Fetched
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed
	run.Duplicates = summary.Duplicates
	if err := e.store.FinishRun(finishCtx, run); err != nil && runErr == nil {
		runErr = err
	}

	if stats, err := e.store.Stats(finishCtx); err == nil {
		summary.Remaining = stats[cache.StatusPending] + stats[cache.StatusFailed] + stats[cache.StatusFetching]
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			e.logger.InfoContext(ctx, "scrape interrupted; progress saved",
				logging.Int("fetched", summary.Fetched))
		}
		return summary, runErr
	}

	e.logger.InfoContext(ctx, "scrape finished",
		logging.Int(logging.FieldPass, summary.Passes),
		logging.Int("fetched", summary.Fetched),
		logging.Int("skipped", summary.Skipped),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("exhausted", summary.Exhausted))
	return summary, nil
}

func (e *Engine) runPass(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < e.cfg.Scrape.Workers; i++ {
		group.Go(func() error {
			return e.drain(groupCtx)
		})
	}
	return group.Wait()
}

func (e *Engine) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := e.store.ClaimNextPending(ctx)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		if err := e.processEntry(services.WithEntryID(ctx, entry.ID), entry); err != nil {
			return err
		}

		processed := e.processed.Add(1)
		if interval := int64(e.cfg.Scrape.SaveInterval); interval > 0 && processed%interval == 0 {
			e.logger.InfoContext(ctx, "progress",
				logging.Int64("processed", processed),
				logging.Int64("fetched", e.fetched.Load()),
				logging.Int64("failed", e.failed.Load()))
		}
	}
}

func (e *Engine) processEntry(ctx context.Context, entry *cache.Entry) error {
	if entry.AuthorID == scholar.NoAuthorFound {
		// The collector already knows there is no profile; record the marker
		// tuple so downstream reports see the citation.
		if _, err := e.store.AddRecord(ctx, cache.Record{
			EntryID:     &entry.ID,
			AuthorName:  scholar.NoAuthorFound,
			CitingPaper: entry.CitingPaper,
			CitedPaper:  entry.CitedPaper,
			Affiliation: scholar.NoAuthorFound,
		}); err != nil {
			return err
		}
		e.skipped.Add(1)
		return e.store.MarkSkipped(ctx, entry.ID)
	}

	if err := e.pacer.Wait(ctx); err != nil {
		return err
	}

	author, err := e.client.AuthorByID(ctx, entry.AuthorID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !services.Retryable(err) {
			e.logger.WarnContext(ctx, "author lookup permanently failed",
				logging.String("author_id", entry.AuthorID),
				logging.Error(err))
			e.skipped.Add(1)
			return e.store.MarkSkipped(ctx, entry.ID)
		}
		e.logger.DebugContext(ctx, "author lookup failed",
			logging.String("author_id", entry.AuthorID),
			logging.Error(err))
		e.failed.Add(1)
		return e.store.MarkFailed(ctx, entry.ID, err.Error())
	}

	affiliation, ok := author.AffiliationFor(e.cfg.Scholar.Conservative)
	if !ok {
		e.failed.Add(1)
		return e.store.MarkFailed(ctx, entry.ID, "profile carries no usable affiliation")
	}

	added, err := e.store.AddRecord(ctx, cache.Record{
		EntryID:     &entry.ID,
		AuthorName:  author.Name,
		CitingPaper: entry.CitingPaper,
		CitedPaper:  entry.CitedPaper,
		Affiliation: affiliation,
	})
	if err != nil {
		return err
	}
	if !added {
		e.duplicates.Add(1)
	}
	e.fetched.Add(1)
	return e.store.MarkFetched(ctx, entry.ID)
}
