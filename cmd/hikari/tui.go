package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/tui"
	"github.com/hyperjump/hikari/pkg/utils"
)

func newTUICmd(opts *globalOptions) *cobra.Command {
	var (
		fuzzy     bool
		serverURL string
		logPath   string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive search dropdown",
		Long: `Open the interactive search dropdown.

Type to search; up/down move the selection, enter picks a record, esc closes the
dropdown, ctrl+c quits. The picked record is printed as JSON on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx := cmd.Context()

			var searcher tui.Searcher
			if serverURL != "" {
				searcher = newAPIClient(serverURL)
			} else {
				// The dropdown owns the terminal, so debug logs go to a file.
				logger := zap.NewNop()
				if cfg.Debug || opts.debug {
					if logger, err = utils.NewFileLogger(logPath, true); err != nil {
						return err
					}
					defer logger.Sync()
				}
				components, err := initializeComponents(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer components.Close()
				searcher = components.Engine
			}

			tuiOpts := tui.OptionsFromConfig(cfg)
			tuiOpts.Fuzzy = fuzzy
			rec, ok, err := tui.Run(ctx, searcher, tuiOpts)
			if err != nil || !ok {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			return enc.Encode(rec)
		},
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "enable typo-tolerant matching")
	cmd.Flags().StringVar(&serverURL, "server", "", "query a running server instead of loading the dataset locally")
	cmd.Flags().StringVar(&logPath, "log-file", filepath.Join(os.TempDir(), "hikari-tui.log"), "debug log destination")
	return cmd
}
