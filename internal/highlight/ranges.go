package highlight

import (
	"sort"
	"unicode/utf8"

	"github.com/hyperjump/hikari/internal/models"
)

// Normalize returns ranges sorted by start with overlapping and adjacent ranges merged.
// Ranges whose end precedes their start are dropped. The input slice is not modified.
func Normalize(ranges []models.MatchRange) []models.MatchRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]models.MatchRange, 0, len(ranges))
	for _, r := range ranges {
		if r.End >= r.Start {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	out := sorted[:0]
	for _, r := range sorted {
		if n := len(out); n > 0 && r.Start <= out[n-1].End+1 {
			if r.End > out[n-1].End {
				out[n-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// FromOffsets coalesces matched byte offsets into inclusive ranges over text.
// Each offset must be the first byte of a character; a range always ends on the
// last byte of its final character. Offsets outside text are ignored.
func FromOffsets(text string, offsets []int) []models.MatchRange {
	if len(offsets) == 0 {
		return nil
	}
	sorted := append([]int(nil), offsets...)
	sort.Ints(sorted)
	var out []models.MatchRange
	for _, off := range sorted {
		if off < 0 || off >= len(text) || !utf8.RuneStart(text[off]) {
			continue
		}
		_, size := utf8.DecodeRuneInString(text[off:])
		end := off + size - 1
		if n := len(out); n > 0 {
			if off <= out[n-1].End {
				continue
			}
			if off == out[n-1].End+1 {
				out[n-1].End = end
				continue
			}
		}
		out = append(out, models.MatchRange{Start: off, End: end})
	}
	return out
}

// RuneOffsets maps rune index to byte offset in text. The final entry is len(text).
func RuneOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}

// Clip keeps the parts of ranges that fall inside the first n bytes of a field.
// n must be a character boundary.
func Clip(ranges []models.MatchRange, n int) []models.MatchRange {
	var out []models.MatchRange
	for _, r := range ranges {
		if r.Start >= n {
			break
		}
		if r.End >= n {
			r.End = n - 1
		}
		out = append(out, r)
	}
	return out
}
