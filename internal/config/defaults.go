package config

import "github.com/hyperjump/hikari/internal/highlight"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Dataset.Fields) == 0 {
		cfg.Dataset.Fields = []string{"activity", "sector", "category"}
	}
	if cfg.Search.Matcher == "" {
		cfg.Search.Matcher = "bleve"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	// The dropdown only opens from two characters on.
	if cfg.Search.MinQueryLength == 0 {
		cfg.Search.MinQueryLength = 2
	}
	if cfg.Search.Fuzziness == 0 {
		cfg.Search.Fuzziness = 1
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 256
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = 3
	}
	if cfg.Highlight.ClassName == "" {
		cfg.Highlight.ClassName = highlight.DefaultClassName
	}
	if cfg.TUI.Label == "" {
		cfg.TUI.Label = "Search activity"
	}
	if cfg.TUI.MaxRows == 0 {
		cfg.TUI.MaxRows = 6
	}
	if cfg.TUI.DebounceMS == 0 {
		cfg.TUI.DebounceMS = 100
	}
	if cfg.TUI.SelectField == "" {
		cfg.TUI.SelectField = cfg.Dataset.Fields[0]
	}
}
