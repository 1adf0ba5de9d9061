package matcher

import (
	"context"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
)

// fieldSource exposes one field of every record to fuzzy.FindFrom.
type fieldSource struct {
	records []models.Record
	field   models.Field
}

func (s fieldSource) String(i int) string { return s.records[i].Value(s.field) }
func (s fieldSource) Len() int            { return len(s.records) }

// SahilmMatcher matches case-insensitive substrings, and when fuzzy also sahilm/fuzzy's
// in-order characters. sahilm/fuzzy folds case rune by rune, so some texts (such as
// "İstanbul" against "ist") only match as substrings; fuzzy mode keeps every substring
// hit so it never finds fewer records than exact mode.
type SahilmMatcher struct {
	mu      sync.RWMutex
	fields  []models.Field
	records []models.Record
}

// NewSahilmMatcher returns an empty matcher.
func NewSahilmMatcher() *SahilmMatcher {
	return &SahilmMatcher{}
}

// Kind implements Matcher.
func (m *SahilmMatcher) Kind() Kind { return KindSahilm }

// Index implements Matcher.
func (m *SahilmMatcher) Index(_ context.Context, records []models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.Record(nil), records...)
	m.fields = fieldsOf(records)
	return nil
}

// termHit is one term's best score for a record plus its ranges per field.
type termHit struct {
	score  int
	ranges map[models.Field][]models.MatchRange
}

// Search implements Matcher. Terms are ANDed, fields ORed.
func (m *SahilmMatcher) Search(ctx context.Context, query string, opts *SearchOptions) ([]models.SearchResult, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	fuzzyMode := opts != nil && opts.Fuzzy

	m.mu.RLock()
	defer m.mu.RUnlock()
	fields := searchFields(m.fields, opts)

	var acc map[int]*candidate
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hits := m.substringHits(term, fields)
		if fuzzyMode {
			for idx, h := range m.fuzzyHits(term, fields) {
				if _, ok := hits[idx]; !ok {
					hits[idx] = h
				}
			}
		}
		next := make(map[int]*candidate, len(hits))
		for idx, h := range hits {
			c, ok := acc[idx]
			if acc == nil {
				c, ok = newCandidate(m.records[idx], idx), true
			}
			if !ok {
				continue
			}
			c.score += float64(h.score)
			for f, rs := range h.ranges {
				c.add(f, rs...)
			}
			next[idx] = c
		}
		acc = next
		if len(acc) == 0 {
			return nil, nil
		}
	}
	cands := make([]*candidate, 0, len(acc))
	for _, c := range acc {
		cands = append(cands, c)
	}
	return rankCandidates(cands, limitOf(opts)), nil
}

func (m *SahilmMatcher) fuzzyHits(term string, fields []models.Field) map[int]*termHit {
	hits := map[int]*termHit{}
	for _, f := range fields {
		src := fieldSource{records: m.records, field: f}
		for _, match := range fuzzy.FindFrom(term, src) {
			h := hits[match.Index]
			if h == nil {
				h = &termHit{ranges: map[models.Field][]models.MatchRange{}}
				hits[match.Index] = h
			}
			// sahilm scores can be negative; shift so every match counts.
			if s := match.Score + 1000; s > h.score {
				h.score = s
			}
			h.ranges[f] = append(h.ranges[f], highlight.FromOffsets(match.Str, match.MatchedIndexes)...)
		}
	}
	return hits
}

func (m *SahilmMatcher) substringHits(term string, fields []models.Field) map[int]*termHit {
	hits := map[int]*termHit{}
	for i, rec := range m.records {
		for _, f := range fields {
			text := rec.Value(f)
			rs := substringRanges(text, term)
			if len(rs) == 0 {
				continue
			}
			h := hits[i]
			if h == nil {
				h = &termHit{ranges: map[models.Field][]models.MatchRange{}}
				hits[i] = h
			}
			// earlier and whole-field matches rank higher
			score := 1000 - rs[0].Start
			if rs[0].Start == 0 && rs[0].End == len(text)-1 {
				score += 1000
			}
			if score > h.score {
				h.score = score
			}
			h.ranges[f] = append(h.ranges[f], rs...)
		}
	}
	return hits
}

// Close implements Matcher.
func (m *SahilmMatcher) Close() error { return nil }
