package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/hikari/internal/dataset"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dataset> <db>",
		Short: "Convert a JSON, YAML or XLSX dataset into a SQLite database",
		Long: `Convert a JSON, YAML or XLSX dataset into a SQLite database.

The database keeps record ids and order, and can then be used as dataset.path.

Example:
  hikari import activities.xlsx activities.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer logger.Sync()
			fields, err := cfg.Dataset.ParsedFields()
			if err != nil {
				return fmt.Errorf("invalid dataset fields: %w", err)
			}
			snap, err := dataset.Load(args[0], fields)
			if err != nil {
				return err
			}
			n, err := dataset.Import(cmd.Context(), args[1], snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s) from %s into %s\n", n, args[0], args[1])
			return nil
		},
	}
}
