package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/hikari/internal/dataset"
)

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Records        int                  `json:"records"`
	Fields         []string             `json:"fields"`
	Matcher        string               `json:"matcher"`
	DatasetPath    string               `json:"dataset_path"`
	LoadedAt       time.Time            `json:"loaded_at"`
	CachedItems    int                  `json:"cached_items"`
	DiskUsageBytes *int64               `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	MinQueryLength int    `json:"min_query_length"`
	DefaultLimit   int    `json:"default_limit"`
	MaxLimit       int    `json:"max_limit"`
	AutoFuzzy      bool   `json:"auto_fuzzy"`
	Watch          bool   `json:"watch"`
	IndexPath      string `json:"index_path,omitempty"`
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var (
		serverURL string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show dataset, matcher and configuration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var status statusResponse
			if serverURL != "" {
				res, err := newAPIClient(serverURL).Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("status failed: %w", err)
				}
				status = *res
			} else {
				cfg, logger, err := setup(opts, false)
				if err != nil {
					return err
				}
				defer logger.Sync()
				components, err := initializeComponents(cmd.Context(), cfg, logger)
				if err != nil {
					return err
				}
				defer components.Close()
				st := components.Engine.Status()
				status = statusResponse{
					Records:     st.Records,
					Fields:      st.Fields,
					Matcher:     st.Matcher,
					DatasetPath: st.DatasetPath,
					LoadedAt:    st.LoadedAt,
					CachedItems: st.CachedItems,
					Config: &statusConfigResponse{
						MinQueryLength: cfg.Search.MinQueryLength,
						DefaultLimit:   cfg.Search.DefaultLimit,
						MaxLimit:       cfg.Search.MaxLimit,
						AutoFuzzy:      cfg.Search.AutoFuzzyOrDefault(),
						Watch:          cfg.Dataset.Watch,
						IndexPath:      cfg.Search.IndexPath,
					},
				}
				if diskBytes, err := dataset.DiskUsageBytes(cfg.Dataset.Path, cfg.Search.IndexPath); err == nil {
					status.DiskUsageBytes = &diskBytes
				}
			}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			case "text":
				writeStatusText(out, &status)
				return nil
			default:
				return fmt.Errorf("unknown output format %q; use text or json", output)
			}
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "query a running server instead of loading the dataset locally")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func writeStatusText(w io.Writer, status *statusResponse) {
	source := status.DatasetPath
	if source == "" {
		source = "<bundled sample>"
	}
	fmt.Fprintf(w, "records:            %d   # count of loaded records\n", status.Records)
	fmt.Fprintf(w, "fields:             %v\n", status.Fields)
	fmt.Fprintf(w, "matcher:            %s\n", status.Matcher)
	fmt.Fprintf(w, "dataset:            %s\n", source)
	if !status.LoadedAt.IsZero() {
		fmt.Fprintf(w, "loaded_at:          %s\n", status.LoadedAt.Format(time.RFC3339))
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # dataset + index on disk\n", *status.DiskUsageBytes)
	}
	if status.Config != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "min_query_length:   %d\n", status.Config.MinQueryLength)
		fmt.Fprintf(w, "default_limit:      %d\n", status.Config.DefaultLimit)
		fmt.Fprintf(w, "max_limit:          %d\n", status.Config.MaxLimit)
		fmt.Fprintf(w, "auto_fuzzy:         %t\n", status.Config.AutoFuzzy)
		fmt.Fprintf(w, "watch:              %t\n", status.Config.Watch)
		if status.Config.IndexPath != "" {
			fmt.Fprintf(w, "index_path:         %s\n", status.Config.IndexPath)
		}
	}
}
