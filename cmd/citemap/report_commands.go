package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"citemap/internal/analysis"
	"citemap/internal/cache"
	"citemap/internal/config"
	"citemap/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize scraped affiliations",
	}
	reportCmd.AddCommand(newReportAffiliationsCommand(ctx))
	reportCmd.AddCommand(newReportCentersCommand(ctx))
	reportCmd.AddCommand(newReportKeywordCommand(ctx))
	return reportCmd
}

func newReportAffiliationsCommand(ctx *commandContext) *cobra.Command {
	var top int
	var similar bool
	var similarThreshold float64

	cmd := &cobra.Command{
		Use:   "affiliations",
		Short: "Rank affiliations by unique citing authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				summary, err := report.BuildSummary(cmd.Context(), store)
				if err != nil {
					return err
				}
				groups := summary.Top(top)
				var pairs []analysis.SimilarPair
				if similar {
					names := make([]string, 0, len(summary.Groups))
					for _, group := range summary.Groups {
						names = append(names, group.Affiliation)
					}
					pairs = analysis.SimilarAffiliations(names, similarThreshold)
				}
				if ctx.JSONMode() {
					payload := map[string]any{
						"uniqueAffiliations": summary.UniqueAffiliations,
						"totalAuthors":       summary.TotalAuthors,
						"groups":             groups,
					}
					if similar {
						payload["similarSpellings"] = pairs
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(groups))
				for _, group := range groups {
					rows = append(rows, []string{
						group.Affiliation,
						strconv.Itoa(group.AuthorCount()),
						truncate(strings.Join(group.Authors, "; "), 80),
					})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Affiliation", "Authors", "Names"}, rows, 2))
				fmt.Fprintf(out, "%d unique affiliations, %d unique authors in total\n",
					summary.UniqueAffiliations, summary.TotalAuthors)

				if similar {
					if len(pairs) == 0 {
						fmt.Fprintln(out, "\nNo similar affiliation spellings found")
						return nil
					}
					fmt.Fprintf(out, "\nLikely duplicate spellings (similarity >= %.2f):\n", similarThreshold)
					for _, pair := range pairs {
						fmt.Fprintf(out, "  %.2f  %q ~ %q\n", pair.Similarity, pair.A, pair.B)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 20, "Number of affiliations to show (0 for all)")
	cmd.Flags().BoolVar(&similar, "similar", false, "Flag affiliation spellings that likely name the same institution")
	cmd.Flags().Float64Var(&similarThreshold, "similar-threshold", 0.5, "Minimum cosine similarity for flagged spellings")
	return cmd
}

func newReportCentersCommand(ctx *commandContext) *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "centers",
		Short: "Tabulate citations per research institution",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, ok := report.RuleSetByName(setName)
			if !ok {
				return fmt.Errorf("unknown rule set %q (want government or industry)", setName)
			}
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				centers, err := report.BuildCenters(cmd.Context(), store, rules)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, centers)
				}

				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(centers.Rows))
				for _, row := range centers.Rows {
					rows = append(rows, []string{
						row.Institution,
						strconv.Itoa(row.CitingPapers),
						strconv.Itoa(row.CitingResearchers),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Institution", "Citing Papers", "Citing Researchers"}, rows, 2, 3))

				if centers.OverflowCount > 0 {
					fmt.Fprintf(out, "%d citations from other NASA centers:\n", centers.OverflowCount)
					for _, affiliation := range centers.OverflowAffiliations {
						fmt.Fprintf(out, "  - %s\n", affiliation)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&setName, "set", "government", "Rule set to apply (government or industry)")
	return cmd
}

func newReportKeywordCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "keyword <keyword>",
		Short: "List affiliations matching a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *cache.Store) error {
				summary, err := report.BuildSummary(cmd.Context(), store)
				if err != nil {
					return err
				}
				groups := summary.Keyword(args[0])
				if ctx.JSONMode() {
					return writeJSON(cmd, groups)
				}

				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					fmt.Fprintf(out, "No affiliations match %q\n", args[0])
					return nil
				}
				for _, group := range groups {
					fmt.Fprintf(out, "%s (%d authors)\n", group.Affiliation, group.AuthorCount())
					for _, citation := range group.Citations {
						fmt.Fprintf(out, "  %s cites %q\n", citation.Author, truncate(citation.CitingPaper, 70))
					}
				}
				return nil
			})
		},
	}
}
