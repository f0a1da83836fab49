package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"citemap/internal/cache"
	"citemap/internal/config"
)

var statusOrder = []cache.Status{
	cache.StatusPending,
	cache.StatusFetching,
	cache.StatusFetched,
	cache.StatusSkipped,
	cache.StatusFailed,
	cache.StatusExhausted,
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show entry status counts and the last scrape run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				counts, err := store.CountRecords(cmd.Context())
				if err != nil {
					return err
				}
				lastRun, err := store.LastRun(cmd.Context())
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"entries": stats,
						"records": counts,
						"lastRun": lastRun,
					})
				}

				out := cmd.OutOrStdout()
				total := 0
				rows := make([][]string, 0, len(statusOrder))
				for _, status := range statusOrder {
					rows = append(rows, []string{string(status), strconv.Itoa(stats[status])})
					total += stats[status]
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})
				fmt.Fprintln(out, renderTable(out, []string{"Entry Status", "Count"}, rows, 2))

				fmt.Fprintf(out, "\nAffiliation records: %d (%d linked, %d unique authors, %d unique affiliations)\n",
					counts.Total, counts.Linked, counts.UniqueAuthors, counts.UniqueAffiliations)

				if lastRun == nil {
					fmt.Fprintln(out, "No scrape runs recorded yet")
					return nil
				}
				fmt.Fprintf(out, "\nLast run %s (%s mode) started %s\n",
					lastRun.ID, lastRun.Mode, lastRun.StartedAt.Format(time.RFC3339))
				if lastRun.FinishedAt != nil {
					fmt.Fprintf(out, "Finished %s: %d passes, %d fetched, %d skipped, %d failed, %d duplicates suppressed\n",
						lastRun.FinishedAt.Format(time.RFC3339), lastRun.Passes,
						lastRun.Fetched, lastRun.Skipped, lastRun.Failed, lastRun.Duplicates)
				} else {
					fmt.Fprintln(out, "Run has not finished (possibly interrupted)")
				}
				return nil
			})
		},
	}
}
