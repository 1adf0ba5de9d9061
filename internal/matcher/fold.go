package matcher

import (
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/hikari/internal/models"
)

// substringRanges returns every non-overlapping case-insensitive occurrence of term in text.
func substringRanges(text, term string) []models.MatchRange {
	if term == "" {
		return nil
	}
	var out []models.MatchRange
	for i := 0; i < len(text); {
		if n, ok := prefixFold(text[i:], term); ok {
			out = append(out, models.MatchRange{Start: i, End: i + n - 1})
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return out
}

// prefixFold reports whether s starts with prefix ignoring case, and the bytes of s consumed.
func prefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if sr != pr && unicode.ToLower(sr) != unicode.ToLower(pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}
