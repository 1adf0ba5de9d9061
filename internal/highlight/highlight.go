// Package highlight wraps matched ranges of record fields in marker strings.
package highlight

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/hikari/internal/models"
)

var (
	// ErrInvalidRange is returned for ranges with start after end, ranges that overlap
	// or precede the previous range, and ranges that split a multi-byte character.
	ErrInvalidRange = errors.New("invalid match range")
	// ErrOutOfBounds is returned when a range does not fit inside the field value.
	ErrOutOfBounds = errors.New("match range out of bounds")
	// ErrUnknownField is returned when a match names a field the record does not have.
	ErrUnknownField = errors.New("unknown field")
)

const (
	DefaultClassName = "highlight"
	DefaultClose     = "</mark>"
)

// Markers are the strings inserted around each matched range.
// They are inserted verbatim and never validated.
type Markers struct {
	Open  string
	Close string
	// Escape, when set, is applied to every field value of a highlighted record
	// (matched and unmatched text) but never to the markers.
	Escape func(string) string
}

// DefaultMarkers returns <mark class="highlight"> and </mark>.
func DefaultMarkers() Markers {
	return ClassMarkers(DefaultClassName)
}

// ClassMarkers returns a <mark> pair carrying the given CSS class.
func ClassMarkers(className string) Markers {
	return Markers{Open: `<mark class="` + className + `">`, Close: DefaultClose}
}

// HTMLMarkers returns the default markers with HTML escaping of field text.
func HTMLMarkers() Markers {
	m := DefaultMarkers()
	m.Escape = html.EscapeString
	return m
}

func (m Markers) escape(s string) string {
	if m.Escape == nil {
		return s
	}
	return m.Escape(s)
}

// Highlight rewrites the matched fields of each result. Results without matches are dropped.
// Input records are never modified; each output record is a new value.
// Ranges must be ascending and non-overlapping, with at most one FieldMatch per field;
// the first violation aborts with an error.
func Highlight(results []models.SearchResult, m Markers) ([]models.HighlightedRecord, error) {
	out := make([]models.HighlightedRecord, 0, len(results))
	for _, res := range results {
		if len(res.Matches) == 0 {
			continue
		}
		rec := res.Record
		rewritten := make(map[models.Field]bool, len(res.Matches))
		for _, fm := range res.Matches {
			if rewritten[fm.Field] {
				return nil, fmt.Errorf("record %s: %w: field %s matched more than once", res.Record.ID(), ErrInvalidRange, fm.Field)
			}
			text, ok := res.Record.Get(fm.Field)
			if !ok {
				return nil, fmt.Errorf("record %s: %w %q", res.Record.ID(), ErrUnknownField, fm.Field)
			}
			marked, err := Field(text, fm.Ranges, m)
			if err != nil {
				return nil, fmt.Errorf("record %s field %s: %w", res.Record.ID(), fm.Field, err)
			}
			rec, _ = rec.With(fm.Field, marked)
			rewritten[fm.Field] = true
		}
		if m.Escape != nil {
			for _, f := range rec.Fields() {
				if !rewritten[f] {
					rec, _ = rec.With(f, m.Escape(rec.Value(f)))
				}
			}
		}
		out = append(out, models.HighlightedRecord{Record: rec})
	}
	return out, nil
}

// Field wraps each range of text in m.Open and m.Close.
// With no ranges the text is returned unchanged (escaped when m.Escape is set).
func Field(text string, ranges []models.MatchRange, m Markers) (string, error) {
	var b strings.Builder
	b.Grow(len(text) + len(ranges)*(len(m.Open)+len(m.Close)))
	err := walk(text, ranges,
		func(s string) { b.WriteString(m.escape(s)) },
		func(s string) {
			b.WriteString(m.Open)
			b.WriteString(m.escape(s))
			b.WriteString(m.Close)
		},
	)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Apply runs the same walk as Field with caller-supplied transforms for unmatched
// and matched segments. A nil transform leaves segments unchanged.
func Apply(text string, ranges []models.MatchRange, plain, marked func(string) string) (string, error) {
	if plain == nil {
		plain = identity
	}
	if marked == nil {
		marked = identity
	}
	var b strings.Builder
	err := walk(text, ranges,
		func(s string) {
			if s != "" {
				b.WriteString(plain(s))
			}
		},
		func(s string) { b.WriteString(marked(s)) },
	)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Strip removes every occurrence of the markers from s.
func Strip(s string, m Markers) string {
	if m.Open != "" {
		s = strings.ReplaceAll(s, m.Open, "")
	}
	if m.Close != "" {
		s = strings.ReplaceAll(s, m.Close, "")
	}
	return s
}

func identity(s string) string { return s }

// walk makes one pass over text, emitting the unmatched gap before each range,
// the inclusive range itself, and finally the unmatched suffix.
func walk(text string, ranges []models.MatchRange, plain, marked func(string)) error {
	next := 0
	for _, r := range ranges {
		if err := check(text, r, next); err != nil {
			return err
		}
		plain(text[next:r.Start])
		marked(text[r.Start : r.End+1])
		next = r.End + 1
	}
	plain(text[next:])
	return nil
}

func check(text string, r models.MatchRange, next int) error {
	switch {
	case r.Start < 0 || r.End >= len(text):
		return fmt.Errorf("%w: [%d, %d] in text of length %d", ErrOutOfBounds, r.Start, r.End, len(text))
	case r.Start > r.End:
		return fmt.Errorf("%w: [%d, %d] starts after it ends", ErrInvalidRange, r.Start, r.End)
	case r.Start < next:
		return fmt.Errorf("%w: [%d, %d] overlaps or precedes the previous range", ErrInvalidRange, r.Start, r.End)
	case !utf8.RuneStart(text[r.Start]):
		return fmt.Errorf("%w: [%d, %d] starts inside a character", ErrInvalidRange, r.Start, r.End)
	case r.End+1 < len(text) && !utf8.RuneStart(text[r.End+1]):
		return fmt.Errorf("%w: [%d, %d] ends inside a character", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}
