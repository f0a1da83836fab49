package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"citemap/internal/cache"
	"citemap/internal/config"
	"citemap/internal/logging"
	"citemap/internal/scholar"
	"citemap/internal/scrape"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var conservative bool
	var workers int
	var retryExhausted bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch affiliations for pending author entries",
		Long: "Walk the imported author entries, look up each author's affiliation, and\n" +
			"record the results. Progress is saved per entry: interrupting with Ctrl-C is\n" +
			"safe, and rerunning resumes from where the previous run stopped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("conservative") {
				cfg.Scholar.Conservative = conservative
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return fmt.Errorf("workers must be at least 1, got %d", workers)
				}
				cfg.Scrape.Workers = workers
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := cache.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := newScholarClient(cfg)
			if err != nil {
				return err
			}

			if retryExhausted {
				revived, err := store.RequeueExhausted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d exhausted entries\n", revived)
			}

			engine, err := scrape.New(cfg, store, client, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, runErr := engine.Run(signalCtx)
			if summary != nil {
				if err := printScrapeSummary(cmd, ctx, summary); err != nil {
					return err
				}
			}
			if runErr != nil && errors.Is(runErr, scrape.ErrAlreadyRunning) {
				return runErr
			}
			if runErr != nil && errors.Is(runErr, signalCtx.Err()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Interrupted; progress saved. Rerun `citemap scrape` to resume.")
				return nil
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&conservative, "conservative", false, "Record only verified organizations, not self-reported affiliations")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent lookup workers")
	cmd.Flags().BoolVar(&retryExhausted, "retry-exhausted", false, "Return exhausted entries to the worklist before scraping")
	return cmd
}

func newScholarClient(cfg *config.Config) (*scholar.Client, error) {
	opts := []scholar.Option{}
	if cfg.Scholar.APIKey != "" {
		opts = append(opts, scholar.WithAPIKey(cfg.Scholar.APIKey))
	}
	if cfg.Scholar.UserAgent != "" {
		opts = append(opts, scholar.WithUserAgent(cfg.Scholar.UserAgent))
	}
	if cfg.Scholar.Timeout > 0 {
		opts = append(opts, scholar.WithTimeout(secondsDuration(cfg.Scholar.Timeout)))
	}
	return scholar.New(cfg.Scholar.BaseURL, opts...)
}

func printScrapeSummary(cmd *cobra.Command, ctx *commandContext, summary *scrape.Summary) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Run", summary.RunID},
		{"Mode", summary.Mode},
		{"Passes", strconv.Itoa(summary.Passes)},
		{"Fetched", strconv.Itoa(summary.Fetched)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Duplicates suppressed", strconv.Itoa(summary.Duplicates)},
		{"Exhausted", strconv.Itoa(summary.Exhausted)},
		{"Remaining", strconv.Itoa(summary.Remaining)},
	}
	fmt.Fprintln(out, renderTable(out, []string{"Scrape", "Value"}, rows, 2))
	return nil
}
