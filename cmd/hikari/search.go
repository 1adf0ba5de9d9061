package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/hikari/internal/cli"
	"github.com/hyperjump/hikari/internal/models"
	"github.com/hyperjump/hikari/internal/tui"
)

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searcherFor returns the HTTP client when serverURL is set, otherwise a local engine.
// The returned cleanup must always be called.
func searcherFor(ctx context.Context, opts *globalOptions, serverURL string) (tui.Searcher, func(), error) {
	if serverURL != "" {
		return newAPIClient(serverURL), func() {}, nil
	}
	cfg, logger, err := setup(opts, false)
	if err != nil {
		return nil, nil, err
	}
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return components.Engine, func() {
		_ = components.Close()
		_ = logger.Sync()
	}, nil
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		limit     int
		fuzzy     bool
		fields    []string
		output    string
		serverURL string
	)
	cmd := &cobra.Command{
		Use:   "search [flags] <query...>",
		Short: "Run one query and print highlighted matches",
		Long: `Run one query and print highlighted matches.

Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.
When nothing matches exactly, the search is retried with typo tolerance unless auto_fuzzy is off.

Examples:
  hikari search pizza del
  hikari search --fuzzy pizaa                      # typo-tolerant search
  hikari search --fields activity,sector food
  hikari search --output json "software dev"       # structured JSON for other apps
  hikari search --server http://localhost:8080 café`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			query := &models.SearchQuery{
				Query: buildSearchQuery(args),
				Limit: limit,
				Fuzzy: fuzzy,
			}
			for _, f := range fields {
				query.Fields = append(query.Fields, models.Field(strings.TrimSpace(f)))
			}

			ctx := cmd.Context()
			searcher, cleanup, err := searcherFor(ctx, opts, serverURL)
			if err != nil {
				return err
			}
			defer cleanup()

			response, err := searcher.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			out := cmd.OutOrStdout()
			mark := cli.Marker(cli.BracketMarker)
			if f, ok := out.(*os.File); ok {
				mark = cli.MarkerFor(f)
			}
			return cli.WriteSearchResults(out, response, format, mark)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from config)")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "enable typo-tolerant matching")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict matching to these fields (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, compact or json")
	cmd.Flags().StringVar(&serverURL, "server", "", "query a running server instead of loading the dataset locally")
	return cmd
}
