package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"citemap/internal/cache"
	"citemap/internal/config"
	"citemap/internal/importer"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import citation data into the affiliation cache",
	}
	importCmd.AddCommand(newImportAuthorsCommand(ctx))
	importCmd.AddCommand(newImportAffiliationsCommand(ctx))
	return importCmd
}

func newImportAuthorsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "authors <file>",
		Short: "Import (author_id, citing_paper, cited_paper) entries to scrape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := importer.ReadAuthors(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				added, skipped, err := store.ImportEntries(cmd.Context(), seeds)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{
						"read":    len(seeds),
						"added":   added,
						"skipped": skipped,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Read %d author entries from %s\n", len(seeds), args[0])
				fmt.Fprintf(out, "Added %d new entries (%d already present)\n", added, skipped)
				return nil
			})
		},
	}
}

func newImportAffiliationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "affiliations <file>",
		Short: "Import legacy affiliation records without author linkage",
		Long: "Import legacy (author_name, citing_paper, cited_paper, affiliation) tuples.\n" +
			"Imported records carry no author entry link; run `citemap cache matching --repair`\n" +
			"to reattach them where the paper pair identifies a single entry.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := importer.ReadAffiliations(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				added := 0
				for _, record := range records {
					wasNew, err := store.AddRecord(cmd.Context(), record)
					if err != nil {
						return err
					}
					if wasNew {
						added++
					}
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{
						"read":       len(records),
						"added":      added,
						"duplicates": len(records) - added,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Read %d affiliation records from %s\n", len(records), args[0])
				fmt.Fprintf(out, "Added %d new records (%d duplicate tuples ignored)\n",
					added, len(records)-added)
				return nil
			})
		},
	}
}
