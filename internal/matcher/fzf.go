package matcher

import (
	"context"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
)

// FzfMatcher scores records with fzf's algorithms. Without fuzzy, each term must appear
// as a substring; with fuzzy, its characters must appear in order.
type FzfMatcher struct {
	mu      sync.RWMutex
	fields  []models.Field
	records []models.Record
}

// NewFzfMatcher returns an empty matcher.
func NewFzfMatcher() *FzfMatcher {
	return &FzfMatcher{}
}

// Kind implements Matcher.
func (m *FzfMatcher) Kind() Kind { return KindFzf }

// Index implements Matcher.
func (m *FzfMatcher) Index(_ context.Context, records []models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.Record(nil), records...)
	m.fields = fieldsOf(records)
	return nil
}

// fzfMatch runs one term against text. Both sides are lowercased up front and matched
// case-sensitively; lowercasing keeps the rune count, so positions index the original text.
func fzfMatch(fn algo.Algo, text string, pattern []rune, slab *util.Slab) (int, []models.MatchRange) {
	if text == "" {
		return 0, nil
	}
	chars := util.ToChars([]byte(strings.ToLower(text)))
	res, pos := fn(true, false, true, &chars, pattern, true, slab)
	if res.Start < 0 || res.Score <= 0 {
		return 0, nil
	}
	offsets := highlight.RuneOffsets(text)
	var runes []int
	if pos != nil && len(*pos) > 0 {
		runes = *pos
	} else {
		for i := res.Start; i < res.End; i++ {
			runes = append(runes, i)
		}
	}
	bytes := make([]int, 0, len(runes))
	for _, r := range runes {
		if r >= 0 && r < len(offsets)-1 {
			bytes = append(bytes, offsets[r])
		}
	}
	return res.Score, highlight.FromOffsets(text, bytes)
}

// Search implements Matcher. Every term must match at least one field; the record score
// is the sum over terms of the best field score.
func (m *FzfMatcher) Search(ctx context.Context, query string, opts *SearchOptions) ([]models.SearchResult, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	fn := algo.ExactMatchNaive
	if opts != nil && opts.Fuzzy {
		fn = algo.FuzzyMatchV2
	}
	patterns := make([][]rune, len(terms))
	for i, t := range terms {
		patterns[i] = []rune(t)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	fields := searchFields(m.fields, opts)
	slab := util.MakeSlab(100*1024, 2048)
	var cands []*candidate
	for i, rec := range m.records {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		c := newCandidate(rec, i)
		matched := true
		for _, p := range patterns {
			best := 0
			for _, f := range fields {
				score, ranges := fzfMatch(fn, rec.Value(f), p, slab)
				if score <= 0 {
					continue
				}
				c.add(f, ranges...)
				if score > best {
					best = score
				}
			}
			if best == 0 {
				matched = false
				break
			}
			c.score += float64(best)
		}
		if matched {
			cands = append(cands, c)
		}
	}
	return rankCandidates(cands, limitOf(opts)), nil
}

// Close implements Matcher.
func (m *FzfMatcher) Close() error { return nil }
