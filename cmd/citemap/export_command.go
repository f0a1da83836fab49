package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"citemap/internal/cache"
	"citemap/internal/config"
	"citemap/internal/geocode"
	"citemap/internal/logging"
	"citemap/internal/report"
	"citemap/internal/services"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var withGeocode bool
	var keyword string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write affiliation report CSVs to the results directory",
		Long: "Write affiliation_summary.csv, the keyword CSV, both research-center\n" +
			"tables, and citation_info.csv to the results directory. With --geocode,\n" +
			"citation rows gain coordinates resolved through the configured geocoder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *cache.Store) error {
				summary, err := report.BuildSummary(cmd.Context(), store)
				if err != nil {
					return err
				}
				exporter := report.NewExporter(cfg.Paths.ResultsDir)
				out := cmd.OutOrStdout()
				written := []string{}

				path, err := exporter.WriteSummary(summary)
				if err != nil {
					return err
				}
				written = append(written, path)

				path, err = exporter.WriteKeyword(summary, keyword)
				if err != nil {
					return err
				}
				written = append(written, path)

				for _, rules := range []report.RuleSet{report.GovernmentRules(), report.IndustryRules()} {
					centers, err := report.BuildCenters(cmd.Context(), store, rules)
					if err != nil {
						return err
					}
					path, err = exporter.WriteCenters(centers)
					if err != nil {
						return err
					}
					written = append(written, path)
					path, err = exporter.WriteCentersDetailed(centers)
					if err != nil {
						return err
					}
					written = append(written, path)
				}

				infos, err := buildCitationInfo(cmd, cfg, summary, withGeocode)
				if err != nil {
					return err
				}
				path, err = exporter.WriteCitationInfo(infos)
				if err != nil {
					return err
				}
				written = append(written, path)

				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"written": written})
				}
				for _, path := range written {
					fmt.Fprintf(out, "Wrote %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withGeocode, "geocode", false, "Resolve affiliation coordinates for citation_info.csv")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "nasa", "Keyword for the filtered affiliation CSV")
	return cmd
}

// buildCitationInfo flattens the summary into citation rows, optionally
// geocoding each distinct affiliation once.
func buildCitationInfo(cmd *cobra.Command, cfg *config.Config, summary *report.Summary, withGeocode bool) ([]report.CitationInfo, error) {
	var resolver geocode.Resolver
	if withGeocode {
		if !cfg.Geocode.Enabled {
			return nil, services.Wrap(services.ErrConfiguration, "export", "geocode",
				"geocoding requested but [geocode] enabled = false", nil)
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		client, err := geocode.New(cfg.Geocode.BaseURL, cfg.Geocode.Email,
			geocode.WithMinInterval(secondsDuration(cfg.Geocode.MinInterval)),
			geocode.WithCache(geocode.NewCache(cfg.GeocodeCachePath(), logger)),
		)
		if err != nil {
			return nil, err
		}
		resolver = client
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	located := make(map[string]geocode.Location)
	var infos []report.CitationInfo
	for _, group := range summary.Groups {
		location, ok := located[group.Affiliation]
		if !ok && resolver != nil {
			resolved, err := resolver.Locate(signalCtx, group.Affiliation)
			if err != nil {
				if errors.Is(err, signalCtx.Err()) {
					return nil, err
				}
				// Keep exporting; the row just stays uncoded.
				fmt.Fprintf(cmd.ErrOrStderr(), "geocode %q failed: %v\n", group.Affiliation, err)
			} else {
				location = resolved
			}
			located[group.Affiliation] = location
		}
		for _, citation := range group.Citations {
			infos = append(infos, report.CitationInfo{
				Author:      citation.Author,
				Affiliation: group.Affiliation,
				CitingPaper: citation.CitingPaper,
				CitedPaper:  citation.CitedPaper,
				Latitude:    location.Latitude,
				Longitude:   location.Longitude,
				Located:     location.Found,
			})
		}
	}
	return infos, nil
}
