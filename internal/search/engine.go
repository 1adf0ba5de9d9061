// Package search runs queries through a matcher and the highlighter.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/config"
	"github.com/hyperjump/hikari/internal/dataset"
	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/matcher"
	"github.com/hyperjump/hikari/internal/models"
)

// ErrInvalidQuery is returned for queries that cannot be run as given.
var ErrInvalidQuery = errors.New("invalid query")

// Engine answers search-as-you-type queries over the store's current snapshot.
// It is safe for concurrent use.
type Engine struct {
	store   *dataset.Store
	matcher matcher.Matcher
	config  *config.SearchConfig
	markers highlight.Markers
	logger  *zap.Logger

	cache      *lru.Cache[string, models.SearchResponse]
	generation atomic.Uint64

	mu      sync.RWMutex
	speller *matcher.SpellChecker
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMarkers sets the highlight markers. Defaults to highlight.DefaultMarkers.
func WithMarkers(m highlight.Markers) Option {
	return func(e *Engine) { e.markers = m }
}

// NewEngine indexes the store's snapshot into m and re-indexes on every reload.
func NewEngine(ctx context.Context, store *dataset.Store, m matcher.Matcher, cfg *config.SearchConfig, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   store,
		matcher: m,
		config:  cfg,
		markers: highlight.DefaultMarkers(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, models.SearchResponse](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		e.cache = cache
	}
	if err := e.Reindex(ctx, store.Snapshot()); err != nil {
		return nil, err
	}
	store.OnReload(func(snap *dataset.Snapshot) {
		if err := e.Reindex(context.Background(), snap); err != nil {
			e.logger.Error("reindex after dataset reload failed", zap.Error(err))
		}
	})
	return e, nil
}

// Reindex rebuilds the matcher index and spelling vocabulary from snap and drops cached responses.
func (e *Engine) Reindex(ctx context.Context, snap *dataset.Snapshot) error {
	start := time.Now()
	records := snap.Records()
	if err := e.matcher.Index(ctx, records); err != nil {
		return fmt.Errorf("failed to index records: %w", err)
	}

	var dict matcher.TermDictionary = matcher.NewRecordTerms(records, snap.Fields())
	if d, ok := e.matcher.(matcher.TermDictionary); ok {
		dict = d
	}
	speller := matcher.NewSpellChecker(dict, matcher.WithMaxSuggestions(e.config.MaxSuggestions))
	if err := speller.Refresh(); err != nil {
		e.logger.Warn("spelling vocabulary unavailable", zap.Error(err))
	}

	e.mu.Lock()
	e.speller = speller
	e.mu.Unlock()

	e.generation.Add(1)
	if e.cache != nil {
		e.cache.Purge()
	}
	e.logger.Info("records indexed",
		zap.String("matcher", string(e.matcher.Kind())),
		zap.Int("records", len(records)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Search validates query, runs it, and highlights the matches.
// Queries shorter than the configured minimum return the idle state without searching.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	snap := e.store.Snapshot()
	for _, f := range query.Fields {
		if !snap.HasField(f) {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, f)
		}
	}

	resp := &models.SearchResponse{
		Query:   query.Query,
		State:   models.StateIdle,
		Hits:    []*models.SearchHit{},
		Matcher: string(e.matcher.Kind()),
	}
	if utf8.RuneCountInString(query.Query) < e.config.MinQueryLength {
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	}

	key := cacheKey(query)
	gen := e.generation.Load()
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			out := cached
			out.Query = query.Query
			out.Hits = append([]*models.SearchHit(nil), cached.Hits...)
			out.QueryTime = time.Since(startTime).Milliseconds()
			return &out, nil
		}
	}

	opts := &matcher.SearchOptions{
		Fields:    query.Fields,
		Limit:     query.Limit,
		Fuzzy:     query.Fuzzy,
		Fuzziness: e.config.Fuzziness,
	}
	results, err := e.matcher.Search(ctx, query.Query, opts)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 && !query.Fuzzy && e.config.AutoFuzzyOrDefault() {
		opts.Fuzzy = true
		results, err = e.matcher.Search(ctx, query.Query, opts)
		if err != nil {
			return nil, fmt.Errorf("fuzzy search failed: %w", err)
		}
		resp.AutoFuzzy = len(results) > 0
	}

	if len(results) == 0 {
		resp.State = models.StateNoMatches
		e.mu.RLock()
		speller := e.speller
		e.mu.RUnlock()
		if speller != nil {
			resp.Suggestions = speller.SuggestQueries(query.Query, e.config.MaxSuggestions)
		}
	} else {
		highlighted, err := highlight.Highlight(results, e.markers)
		if err != nil {
			return nil, fmt.Errorf("highlight failed: %w", err)
		}
		byID := make(map[string]*models.HighlightedRecord, len(highlighted))
		for i := range highlighted {
			byID[highlighted[i].ID()] = &highlighted[i]
		}
		scores := NormalizeScores(results)
		resp.State = models.StateMatched
		resp.Hits = make([]*models.SearchHit, 0, len(results))
		for i, r := range results {
			resp.Hits = append(resp.Hits, &models.SearchHit{
				Rank:        r.Rank,
				Score:       scores[i],
				Record:      r.Record,
				Highlighted: byID[r.Record.ID()],
				Matches:     r.Matches,
			})
		}
	}
	resp.Total = len(resp.Hits)
	resp.QueryTime = time.Since(startTime).Milliseconds()

	if e.cache != nil && e.generation.Load() == gen {
		e.cache.Add(key, *resp)
	}
	e.logger.Debug("search",
		zap.String("query", query.Query),
		zap.String("state", string(resp.State)),
		zap.Int("hits", resp.Total),
		zap.Bool("auto_fuzzy", resp.AutoFuzzy),
		zap.Int64("took_ms", resp.QueryTime))
	return resp, nil
}

func cacheKey(q *models.SearchQuery) string {
	fields := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		fields[i] = string(f)
	}
	return fmt.Sprintf("%s\x00%d\x00%t\x00%s", strings.ToLower(q.Query), q.Limit, q.Fuzzy, strings.Join(fields, ","))
}

// Status describes the dataset and matcher serving searches.
type Status struct {
	Matcher     string    `json:"matcher"`
	Records     int       `json:"records"`
	Fields      []string  `json:"fields"`
	DatasetPath string    `json:"dataset_path"`
	LoadedAt    time.Time `json:"loaded_at"`
	CachedItems int       `json:"cached_items"`
}

// Status returns a snapshot of engine state.
func (e *Engine) Status() Status {
	snap := e.store.Snapshot()
	fields := snap.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	s := Status{
		Matcher:     string(e.matcher.Kind()),
		Records:     snap.Len(),
		Fields:      names,
		DatasetPath: snap.Source(),
		LoadedAt:    snap.LoadedAt(),
	}
	if e.cache != nil {
		s.CachedItems = e.cache.Len()
	}
	return s
}

// Store returns the dataset store.
func (e *Engine) Store() *dataset.Store { return e.store }

// Close releases the matcher.
func (e *Engine) Close() error {
	return e.matcher.Close()
}
