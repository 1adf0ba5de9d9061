package search

import (
	"github.com/hyperjump/hikari/internal/config"
	"github.com/hyperjump/hikari/internal/models"
)

// ProcessQuery applies the configured default limit, validates the query and caps the limit.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) error {
	if query.Limit == 0 && cfg.DefaultLimit > 0 {
		query.Limit = cfg.DefaultLimit
	}
	if err := query.Validate(); err != nil {
		return err
	}
	if cfg.MaxLimit > 0 && query.Limit > cfg.MaxLimit {
		query.Limit = cfg.MaxLimit
	}
	return nil
}
