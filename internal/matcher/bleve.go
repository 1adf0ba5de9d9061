package matcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/models"
)

// ErrIndexUnavailable is returned when an on-disk index was lost while being replaced.
var ErrIndexUnavailable = errors.New("bleve index unavailable")

// BleveMatcher matches whole words and word prefixes, plus typo-tolerant words when fuzzy.
type BleveMatcher struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	index     bleve.Index
	fields    []models.Field
	records   map[string]models.Record
	positions map[string]int
}

// NewBleveMatcher returns an empty matcher. An empty path keeps the index in memory.
func NewBleveMatcher(path string, logger *zap.Logger) *BleveMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BleveMatcher{path: path, logger: logger}
}

// Kind implements Matcher.
func (b *BleveMatcher) Kind() Kind { return KindBleve }

// wordAnalyzer lowercases and tokenizes without stemming or stop words, so every typed
// word (including "of" and "and") lines up with an indexed term.
const wordAnalyzer = "hikari_words"

func buildMapping(fields []models.Field) (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(wordAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}
	im.DefaultAnalyzer = wordAnalyzer
	docMapping := bleve.NewDocumentMapping()
	for _, f := range fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = wordAnalyzer
		fm.Store = false
		fm.IncludeTermVectors = true
		docMapping.AddFieldMappingsAt(string(f), fm)
	}
	im.DefaultMapping = docMapping
	return im, nil
}

// Index rebuilds the index from records. An on-disk index is built next to the current one
// and replaces it only once complete; on failure the previous index keeps serving.
func (b *BleveMatcher) Index(ctx context.Context, records []models.Record) error {
	start := time.Now()
	fields := fieldsOf(records)

	b.mu.Lock()
	defer b.mu.Unlock()

	im, err := buildMapping(fields)
	if err != nil {
		return err
	}
	buildPath := ""
	if b.path != "" {
		buildPath = b.path + ".next"
	}
	idx, err := create(buildPath, im)
	if err != nil {
		return err
	}
	discard := func() {
		_ = idx.Close()
		if buildPath != "" {
			_ = os.RemoveAll(buildPath)
		}
	}

	batch := idx.NewBatch()
	recs := make(map[string]models.Record, len(records))
	positions := make(map[string]int, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			discard()
			return err
		}
		doc := make(map[string]interface{}, len(fields))
		for _, f := range rec.Fields() {
			doc[string(f)] = rec.Value(f)
		}
		if err := batch.Index(rec.ID(), doc); err != nil {
			discard()
			return fmt.Errorf("failed to index record %s: %w", rec.ID(), err)
		}
		recs[rec.ID()] = rec
		positions[rec.ID()] = i
	}
	if err := idx.Batch(batch); err != nil {
		discard()
		return fmt.Errorf("Bleve batch failed: %w", err)
	}

	if buildPath != "" {
		if idx, err = b.promote(idx, buildPath); err != nil {
			return err
		}
	} else if b.index != nil {
		_ = b.index.Close()
	}
	b.index, b.fields, b.records, b.positions = idx, fields, recs, positions
	b.logger.Debug("bleve index built",
		zap.Int("records", len(records)),
		zap.Bool("in_memory", b.path == ""),
		zap.Duration("took", time.Since(start)))
	return nil
}

// promote moves the completed index at buildPath over b.path and reopens it there.
// The previous index is closed first; if the move fails the matcher has no index.
func (b *BleveMatcher) promote(idx bleve.Index, buildPath string) (bleve.Index, error) {
	if err := idx.Close(); err != nil {
		_ = os.RemoveAll(buildPath)
		return nil, fmt.Errorf("failed to close new Bleve index: %w", err)
	}
	if b.index != nil {
		_ = b.index.Close()
		b.index = nil
	}
	if err := os.RemoveAll(b.path); err != nil {
		return nil, fmt.Errorf("failed to remove previous Bleve index: %w", err)
	}
	if err := os.Rename(buildPath, b.path); err != nil {
		return nil, fmt.Errorf("failed to move Bleve index into place: %w", err)
	}
	opened, err := bleve.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Bleve index: %w", err)
	}
	return opened, nil
}

// create makes a new index at path, or in memory when path is empty.
func create(path string, im mapping.IndexMapping) (bleve.Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create Bleve index: %w", err)
		}
		return idx, nil
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to remove stale Bleve index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return idx, nil
}

// Search requires every query term to match some field, as a whole word, a word prefix,
// or (when fuzzy and the term has at least 3 characters) within the edit distance.
func (b *BleveMatcher) Search(ctx context.Context, query string, opts *SearchOptions) ([]models.SearchResult, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.index == nil {
		if b.records != nil {
			return nil, ErrIndexUnavailable
		}
		return nil, nil
	}

	fields := searchFields(b.fields, opts)
	fuzzy, fuzziness := false, 1
	if opts != nil {
		fuzzy = opts.Fuzzy
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}
	if fuzziness > 2 {
		fuzziness = 2
	}

	req := bleve.NewSearchRequestOptions(buildQuery(terms, fields, fuzzy, fuzziness), limitOf(opts), 0, false)
	req.IncludeLocations = true
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	wanted := make(map[models.Field]bool, len(fields))
	for _, f := range fields {
		wanted[f] = true
	}
	cands := make([]*candidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		rec, ok := b.records[hit.ID]
		if !ok {
			continue
		}
		c := newCandidate(rec, b.positions[hit.ID])
		c.score = hit.Score
		for fieldName, termLocs := range hit.Locations {
			f := models.Field(fieldName)
			if !wanted[f] {
				continue
			}
			text := rec.Value(f)
			for indexed, locs := range termLocs {
				for _, loc := range locs {
					if r, ok := locationRange(text, indexed, terms, int(loc.Start), int(loc.End)); ok {
						c.add(f, r)
					}
				}
			}
		}
		cands = append(cands, c)
	}
	return rankCandidates(cands, limitOf(opts)), nil
}

func buildQuery(terms []string, fields []models.Field, fuzzy bool, fuzziness int) blevequery.Query {
	perTerm := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		var alts []blevequery.Query
		for _, f := range fields {
			mq := bleve.NewMatchQuery(term)
			mq.SetField(string(f))
			pq := bleve.NewPrefixQuery(term)
			pq.SetField(string(f))
			alts = append(alts, mq, pq)
			if fuzzy && utf8.RuneCountInString(term) >= 3 {
				fq := bleve.NewFuzzyQuery(term)
				fq.SetFuzziness(fuzziness)
				fq.SetField(string(f))
				alts = append(alts, fq)
			}
		}
		perTerm = append(perTerm, bleve.NewDisjunctionQuery(alts...))
	}
	return bleve.NewConjunctionQuery(perTerm...)
}

// locationRange converts a term location (end exclusive) to an inclusive range.
// When the indexed word only matched as a prefix, just the typed part is covered.
func locationRange(text, indexed string, terms []string, start, end int) (models.MatchRange, bool) {
	if start < 0 || end > len(text) || start >= end {
		return models.MatchRange{}, false
	}
	stop := end
	exact := false
	for _, t := range terms {
		if t == indexed {
			exact = true
			break
		}
	}
	if !exact {
		best := 0
		for _, t := range terms {
			if n, ok := prefixFold(text[start:end], t); ok && n > best {
				best = n
			}
		}
		if best > 0 {
			stop = start + best
		}
	}
	return models.MatchRange{Start: start, End: stop - 1}, true
}

// Terms returns every indexed word with its document frequency, summed over fields.
func (b *BleveMatcher) Terms() (map[string]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	terms := make(map[string]int)
	if b.index == nil {
		return terms, nil
	}
	for _, f := range b.fields {
		dict, err := b.index.FieldDict(string(f))
		if err != nil {
			return nil, fmt.Errorf("failed to read terms of %s: %w", f, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			terms[entry.Term] += int(entry.Count)
		}
		_ = dict.Close()
	}
	return terms, nil
}

// DocCount returns the number of indexed records.
func (b *BleveMatcher) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.index == nil {
		return 0, nil
	}
	return b.index.DocCount()
}

// Close releases the index.
func (b *BleveMatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index == nil {
		return nil
	}
	err := b.index.Close()
	b.index, b.records = nil, nil
	return err
}
