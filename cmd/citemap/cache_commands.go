package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"citemap/internal/analysis"
	"citemap/internal/cache"
	"citemap/internal/config"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and repair the affiliation cache",
	}
	cacheCmd.AddCommand(newCacheVerifyCommand(ctx))
	cacheCmd.AddCommand(newCacheDuplicatesCommand(ctx))
	cacheCmd.AddCommand(newCacheUniquenessCommand(ctx))
	cacheCmd.AddCommand(newCacheMatchingCommand(ctx))
	cacheCmd.AddCommand(newCacheHealthCommand(ctx))
	return cacheCmd
}

func newCacheVerifyCommand(ctx *commandContext) *cobra.Command {
	var keyword string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the affiliation cache contents and health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				report, err := analysis.Verify(cmd.Context(), store, keyword)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache: %s\n", report.CachePath)
				fmt.Fprintf(out, "Total records: %d (%d linked to author entries)\n",
					report.TotalRecords, report.LinkedRecords)
				fmt.Fprintf(out, "Duplicate tuples: %d\n", report.DuplicateTuples)
				fmt.Fprintf(out, "Unique authors: %d\n", report.UniqueAuthors)
				fmt.Fprintf(out, "Unique affiliations: %d\n", report.UniqueAffiliations)

				if report.Sample != nil {
					fmt.Fprintln(out, "\nSample record:")
					fmt.Fprintf(out, "  Author: %s\n", report.Sample.AuthorName)
					fmt.Fprintf(out, "  Citing paper: %s\n", truncate(report.Sample.CitingPaper, 60))
					fmt.Fprintf(out, "  Cited paper: %s\n", truncate(report.Sample.CitedPaper, 60))
					fmt.Fprintf(out, "  Affiliation: %s\n", report.Sample.Affiliation)
				}

				if report.Keyword != "" {
					fmt.Fprintf(out, "\nAffiliations matching %q: %d\n", report.Keyword, report.KeywordHits)
					for _, example := range report.KeywordExamples {
						fmt.Fprintf(out, "  - %s @ %s\n", example.AuthorName, example.Affiliation)
					}
				}

				fmt.Fprintf(out, "\nIntegrity check: %s\n", yesNo(report.Health.IntegrityCheck))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "nasa", "Affiliation keyword to count and sample")
	return cmd
}

func newCacheDuplicatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Report duplicate affiliation tuples",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				report, err := analysis.Duplicates(cmd.Context(), store)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total affiliation records: %d\n", report.TotalRecords)
				fmt.Fprintf(out, "Unique affiliation records: %d\n", report.UniqueRecords)
				fmt.Fprintf(out, "Duplicates suppressed during scraping: %d\n", report.Suppressed)
				if len(report.StoredGroups) == 0 {
					fmt.Fprintln(out, "No duplicate tuples stored")
					return nil
				}
				fmt.Fprintf(out, "\nStored duplicate tuples (%d groups, schema constraint violated):\n",
					len(report.StoredGroups))
				for i, group := range report.StoredGroups {
					if i == 5 {
						fmt.Fprintf(out, "  ... and %d more\n", len(report.StoredGroups)-5)
						break
					}
					fmt.Fprintf(out, "  %dx: %s @ %s\n", group.Count, group.AuthorName, group.Affiliation)
				}
				return nil
			})
		},
	}
}

func newCacheUniquenessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "uniqueness",
		Short: "Examine author entry uniqueness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				report, err := analysis.Uniqueness(cmd.Context(), store)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total author entries: %d\n", report.TotalEntries)
				fmt.Fprintf(out, "Unique author IDs: %d (%d repeat citers)\n",
					report.UniqueAuthorIDs, report.DuplicateAuthorIDs)
				fmt.Fprintf(out, "Unique (citing, cited) pairs: %d (%d shared)\n",
					report.UniquePairs, report.DuplicatePairs)
				fmt.Fprintf(out, "Full tuples unique: %s\n", yesNo(report.AllTuplesUnique))

				for i, pair := range report.SharedPairs {
					if i == 0 {
						fmt.Fprintln(out, "\nShared paper pairs:")
					}
					if i == 3 {
						fmt.Fprintf(out, "  ... and %d more\n", len(report.SharedPairs)-3)
						break
					}
					fmt.Fprintf(out, "  %d authors cite %q -> %q: %s\n",
						len(pair.AuthorIDs), truncate(pair.CitingPaper, 50),
						truncate(pair.CitedPaper, 50), strings.Join(pair.AuthorIDs, ", "))
				}
				return nil
			})
		},
	}
}

func newCacheMatchingCommand(ctx *commandContext) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "matching",
		Short: "Match legacy affiliation records back to author entries",
		Long: "Legacy affiliation records carry no author entry link. This command matches\n" +
			"them against author entries via their (citing, cited) paper pair and classifies\n" +
			"each as unique, ambiguous, or unmatched. With --repair, unique matches are\n" +
			"written back to the store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				report, err := analysis.Matching(cmd.Context(), store, repair)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				if report.TotalUnlinked == 0 {
					fmt.Fprintln(out, "Every affiliation record is linked to an author entry")
					return nil
				}
				rows := [][]string{
					{"unique", strconv.Itoa(report.Unique)},
					{"ambiguous", strconv.Itoa(report.Ambiguous)},
					{"unmatched", strconv.Itoa(report.Unmatched)},
					{"total unlinked", strconv.Itoa(report.TotalUnlinked)},
				}
				fmt.Fprintln(out, renderTable(out, []string{"Match Class", "Count"}, rows, 2))
				if repair {
					fmt.Fprintf(out, "Repaired %d records\n", report.Repaired)
				} else if report.Unique > 0 {
					fmt.Fprintf(out, "Run with --repair to link the %d unique matches\n", report.Unique)
				}
				for _, matchCase := range report.Cases {
					if matchCase.Class != analysis.MatchAmbiguous {
						continue
					}
					ids := make([]string, 0, len(matchCase.Candidates))
					for _, candidate := range matchCase.Candidates {
						ids = append(ids, candidate.AuthorID)
					}
					fmt.Fprintf(out, "Ambiguous: %s has %d candidates (%s)\n",
						matchCase.Record.AuthorName, len(matchCase.Candidates), strings.Join(ids, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Write unique matches back to the store")
	return cmd
}

func newCacheHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check cache database health (schema, integrity, tables)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, health)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database path: %s\n", health.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", health.SchemaVersion)
				if len(health.TablesPresent) > 0 {
					tables := append([]string(nil), health.TablesPresent...)
					sort.Strings(tables)
					fmt.Fprintf(out, "Tables: %s\n", strings.Join(tables, ", "))
				}
				if len(health.MissingTables) > 0 {
					missing := append([]string(nil), health.MissingTables...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing tables: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing tables: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Total entries: %d\n", health.TotalEntries)
				fmt.Fprintf(out, "Total records: %d\n", health.TotalRecords)
				if health.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", health.Error)
				}
				return nil
			})
		},
	}
}
