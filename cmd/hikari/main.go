// Package main is the hikari CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/config"
	"github.com/hyperjump/hikari/internal/dataset"
	"github.com/hyperjump/hikari/internal/matcher"
	"github.com/hyperjump/hikari/internal/search"
	"github.com/hyperjump/hikari/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/hikari/config.yaml"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "hikari",
		Short: "Search-as-you-type over a static record set",
		Long: `hikari - search-as-you-type with highlighted matches

Loads a static dataset (JSON, YAML, XLSX or SQLite), indexes it with the
configured matcher (bleve, fzf or sahilm) and serves queries over HTTP, in a
terminal dropdown, or one-shot from the command line.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newTUICmd(opts),
		newImportCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if present, and a missing default file means built-in defaults (bundled
// sample dataset). Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads config and builds a logger. Long-running commands always log; one-shot
// commands stay quiet unless debug is on.
func setup(opts *globalOptions, longRunning bool) (*config.Config, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || opts.debug
	logger := zap.NewNop()
	if longRunning || debugMode {
		logger, err = utils.NewLogger(debugMode)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	return cfg, logger, nil
}

// Components holds the initialized search stack.
type Components struct {
	Store   *dataset.Store
	Matcher matcher.Matcher
	Engine  *search.Engine
}

// Close releases the matcher index.
func (c *Components) Close() error {
	return c.Engine.Close()
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	fields, err := cfg.Dataset.ParsedFields()
	if err != nil {
		return nil, fmt.Errorf("invalid dataset fields: %w", err)
	}
	store, err := dataset.Open(cfg.Dataset.Path, fields, dataset.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	m, err := matcher.NewMatcher(cfg.Search.Matcher,
		matcher.WithLogger(logger),
		matcher.WithIndexPath(cfg.Search.IndexPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}
	engine, err := search.NewEngine(ctx, store, m, &cfg.Search,
		search.WithLogger(logger),
		search.WithMarkers(cfg.Highlight.Markers()))
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}
	logger.Info("components initialized",
		zap.String("dataset", store.Path()),
		zap.Int("records", store.Snapshot().Len()),
		zap.String("matcher", cfg.Search.Matcher))
	return &Components{Store: store, Matcher: m, Engine: engine}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hikari version %s\n", version)
		},
	}
}
