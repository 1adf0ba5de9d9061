package matcher

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hyperjump/hikari/internal/models"
)

// TermDictionary provides the vocabulary used for spelling suggestions.
type TermDictionary interface {
	// Terms returns every known word with its document frequency.
	Terms() (map[string]int, error)
}

// RecordTerms is a TermDictionary built directly from record values.
type RecordTerms map[string]int

// NewRecordTerms counts, for each word, the records whose given fields contain it.
func NewRecordTerms(records []models.Record, fields []models.Field) RecordTerms {
	terms := RecordTerms{}
	for _, rec := range records {
		seen := map[string]struct{}{}
		for _, f := range fields {
			for _, w := range Tokenize(rec.Value(f)) {
				if _, ok := seen[w]; ok {
					continue
				}
				seen[w] = struct{}{}
				terms[w]++
			}
		}
	}
	return terms
}

// Terms implements TermDictionary.
func (t RecordTerms) Terms() (map[string]int, error) { return t, nil }

// Suggestion is a dictionary word close to a query term.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellCheckResult describes the corrections found for a query.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     map[string][]Suggestion
	MisspelledTerms []string
	HasCorrections  bool
}

// SpellChecker suggests dictionary words for query terms that match nothing.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	mu    sync.RWMutex
	terms map[string]int
	valid bool
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores dictionary words seen in fewer records.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps suggestions per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker returns a checker over dict. The vocabulary is read lazily.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh re-reads the vocabulary from the dictionary.
func (s *SpellChecker) Refresh() error {
	terms, err := s.dictionary.Terms()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = make(map[string]int, len(terms))
	for t, n := range terms {
		s.terms[strings.ToLower(t)] += n
	}
	s.valid = true
	return nil
}

func (s *SpellChecker) vocabulary() map[string]int {
	s.mu.RLock()
	valid := s.valid
	s.mu.RUnlock()
	if !valid {
		if err := s.Refresh(); err != nil {
			return nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terms
}

// Known reports whether term is a dictionary word.
func (s *SpellChecker) Known(term string) bool {
	_, ok := s.vocabulary()[strings.ToLower(term)]
	return ok
}

// Suggest returns dictionary words within the maximum edit distance of term,
// closest and most frequent first.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	term = strings.ToLower(term)
	n := utf8.RuneCountInString(term)
	var out []Suggestion
	for word, freq := range s.vocabulary() {
		if word == term || freq < s.minFreq {
			continue
		}
		diff := utf8.RuneCountInString(word) - n
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		d := DamerauLevenshteinDistance(term, word)
		if d > s.maxDistance || d >= n {
			continue
		}
		out = append(out, Suggestion{
			Term:      word,
			Distance:  d,
			Frequency: freq,
			Score:     float64(freq) / float64(d+1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// Check replaces each unknown query term by its best suggestion.
func (s *SpellChecker) Check(query string) *SpellCheckResult {
	terms := Tokenize(query)
	res := &SpellCheckResult{OriginalQuery: query, Suggestions: map[string][]Suggestion{}}
	corrected := make([]string, 0, len(terms))
	for _, t := range terms {
		if s.Known(t) {
			corrected = append(corrected, t)
			continue
		}
		sugg := s.Suggest(t)
		if len(sugg) == 0 {
			corrected = append(corrected, t)
			continue
		}
		res.HasCorrections = true
		res.MisspelledTerms = append(res.MisspelledTerms, t)
		res.Suggestions[t] = sugg
		corrected = append(corrected, sugg[0].Term)
	}
	res.CorrectedQuery = strings.Join(corrected, " ")
	return res
}

// SuggestQueries returns up to n corrected queries. The first uses the best suggestion for
// every misspelled term; the rest vary the first misspelled term.
func (s *SpellChecker) SuggestQueries(query string, n int) []string {
	if n <= 0 {
		return nil
	}
	res := s.Check(query)
	if !res.HasCorrections {
		return nil
	}
	out := []string{res.CorrectedQuery}
	first := res.MisspelledTerms[0]
	corrected := strings.Fields(res.CorrectedQuery)
	pos := -1
	for i, t := range Tokenize(query) {
		if t == first {
			pos = i
			break
		}
	}
	for _, alt := range res.Suggestions[first][1:] {
		if len(out) >= n || pos < 0 {
			break
		}
		variant := append([]string(nil), corrected...)
		variant[pos] = alt.Term
		out = append(out, strings.Join(variant, " "))
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
