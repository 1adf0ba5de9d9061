// Package config provides configuration loading and structs for hikari.
package config

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Search    SearchConfig    `yaml:"search"`
	Highlight HighlightConfig `yaml:"highlight"`
	TUI       TUIConfig       `yaml:"tui"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatasetConfig describes where records come from and which fields are searchable.
type DatasetConfig struct {
	// Path to a .json, .yaml, .xlsx or .db file. Empty uses the bundled sample dataset.
	Path   string   `yaml:"path"`
	Fields []string `yaml:"fields"`
	// Watch reloads the dataset when the file changes.
	Watch bool `yaml:"watch"`
}

// ParsedFields returns the configured fields as models.Field values.
func (d *DatasetConfig) ParsedFields() ([]models.Field, error) {
	return models.ParseFields(d.Fields)
}

// SearchConfig holds matcher and query settings.
type SearchConfig struct {
	Matcher        string `yaml:"matcher"`
	IndexPath      string `yaml:"index_path"`
	DefaultLimit   int    `yaml:"default_limit"`
	MaxLimit       int    `yaml:"max_limit"`
	MinQueryLength int    `yaml:"min_query_length"`
	Fuzziness      int    `yaml:"fuzziness"`
	AutoFuzzy      *bool  `yaml:"auto_fuzzy"`
	CacheSize      int    `yaml:"cache_size"`
	MaxSuggestions int    `yaml:"max_suggestions"`
}

// AutoFuzzyOrDefault returns whether to retry with fuzzy matching; defaults to true when unset.
func (s *SearchConfig) AutoFuzzyOrDefault() bool {
	if s.AutoFuzzy != nil {
		return *s.AutoFuzzy
	}
	return true
}

// HighlightConfig holds the marker strings inserted around matches.
type HighlightConfig struct {
	ClassName  string `yaml:"class_name"`
	Open       string `yaml:"open"`
	Close      string `yaml:"close"`
	EscapeHTML bool   `yaml:"escape_html"`
}

// Markers returns the configured markers. Explicit open/close strings win over class_name.
func (h *HighlightConfig) Markers() highlight.Markers {
	m := highlight.ClassMarkers(h.ClassName)
	if h.Open != "" || h.Close != "" {
		m = highlight.Markers{Open: h.Open, Close: h.Close}
	}
	if h.EscapeHTML {
		m.Escape = html.EscapeString
	}
	return m
}

// TUIConfig holds terminal autocomplete settings.
type TUIConfig struct {
	Label       string `yaml:"label"`
	MaxRows     int    `yaml:"max_rows"`
	DebounceMS  int    `yaml:"debounce_ms"`
	SelectField string `yaml:"select_field"`
}

// Debounce returns the keystroke debounce interval.
func (t *TUIConfig) Debounce() time.Duration {
	return time.Duration(t.DebounceMS) * time.Millisecond
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Dataset.Path = expandPath(cfg.Dataset.Path, configDir)
	cfg.Search.IndexPath = expandPath(cfg.Search.IndexPath, configDir)

	if _, err := cfg.Dataset.ParsedFields(); err != nil {
		return nil, fmt.Errorf("invalid dataset fields: %w", err)
	}
	return &cfg, nil
}

// Default returns a config with every default applied, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty stays empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
