// Package matcher finds records matching a query and reports where each field matched.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
)

// Kind names a matcher implementation.
type Kind string

const (
	KindBleve  Kind = "bleve"
	KindFzf    Kind = "fzf"
	KindSahilm Kind = "sahilm"
)

// Kinds lists the available matchers.
var Kinds = []Kind{KindBleve, KindFzf, KindSahilm}

// defaultLimit applies when SearchOptions.Limit is not positive.
const defaultLimit = 10

// SearchOptions are per-query parameters. Nil means defaults.
type SearchOptions struct {
	// Fields restricts matching to these fields. Empty means every indexed field.
	Fields []models.Field
	Limit  int
	// Fuzzy allows typo-tolerant matches in addition to exact and prefix matches.
	Fuzzy bool
	// Fuzziness is the maximum edit distance used by the bleve matcher (1 or 2).
	Fuzziness int
}

// Matcher produces search results whose ranges are ascending and non-overlapping per field.
// Results are ordered best first with Rank starting at 1.
type Matcher interface {
	// Index replaces the indexed records.
	Index(ctx context.Context, records []models.Record) error
	Search(ctx context.Context, query string, opts *SearchOptions) ([]models.SearchResult, error)
	Kind() Kind
	Close() error
}

// Option configures a matcher built by NewMatcher.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	indexPath string
}

// WithLogger sets the matcher logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIndexPath stores the bleve index on disk at path instead of in memory.
func WithIndexPath(path string) Option {
	return func(o *options) { o.indexPath = path }
}

// NewMatcher returns the matcher named by kind.
func NewMatcher(kind string, opts ...Option) (Matcher, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindBleve, "":
		return NewBleveMatcher(o.indexPath, o.logger), nil
	case KindFzf:
		return NewFzfMatcher(), nil
	case KindSahilm:
		return NewSahilmMatcher(), nil
	default:
		return nil, fmt.Errorf("unknown matcher %q (available: bleve, fzf, sahilm)", kind)
	}
}

// Tokenize lowercases s and splits it into letter/digit runs.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// queryTerms splits a query on whitespace; punctuation inside a term is kept.
func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func limitOf(opts *SearchOptions) int {
	if opts == nil || opts.Limit <= 0 {
		return defaultLimit
	}
	return opts.Limit
}

// searchFields returns the requested fields, or all when none are requested.
func searchFields(all []models.Field, opts *SearchOptions) []models.Field {
	if opts == nil || len(opts.Fields) == 0 {
		return all
	}
	return opts.Fields
}

// fieldsOf returns the union of record fields in first-seen order.
func fieldsOf(records []models.Record) []models.Field {
	var out []models.Field
	seen := map[models.Field]struct{}{}
	for _, r := range records {
		for _, f := range r.Fields() {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				out = append(out, f)
			}
		}
	}
	return out
}

// candidate collects the matches of one record across fields and terms.
type candidate struct {
	record   models.Record
	position int
	score    float64
	ranges   map[models.Field][]models.MatchRange
}

func newCandidate(rec models.Record, position int) *candidate {
	return &candidate{record: rec, position: position, ranges: map[models.Field][]models.MatchRange{}}
}

func (c *candidate) add(f models.Field, rs ...models.MatchRange) {
	c.ranges[f] = append(c.ranges[f], rs...)
}

// result builds the SearchResult with normalized ranges in record field order.
func (c *candidate) result(rank int) models.SearchResult {
	var matches []models.FieldMatch
	for _, f := range c.record.Fields() {
		rs := highlight.Normalize(c.ranges[f])
		if len(rs) == 0 {
			continue
		}
		matches = append(matches, models.FieldMatch{Field: f, Ranges: rs})
	}
	return models.SearchResult{Record: c.record, Matches: matches, Score: c.score, Rank: rank}
}

// rankCandidates orders by score, then dataset position, and keeps the best limit.
func rankCandidates(cands []*candidate, limit int) []models.SearchResult {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].position < cands[j].position
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]models.SearchResult, 0, len(cands))
	for i, c := range cands {
		out = append(out, c.result(i+1))
	}
	return out
}
