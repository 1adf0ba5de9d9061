// Package utils provides shared utilities for terminal text and logging.
package utils

import "github.com/mattn/go-runewidth"

const ellipsis = "…"

// FitIndex returns the byte length of the longest prefix of s whose display width is at most
// width. The result is always a rune boundary.
func FitIndex(s string, width int) int {
	if width <= 0 {
		return 0
	}
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			return i
		}
		w += rw
	}
	return len(s)
}

// Truncate shortens s to at most width display cells, ending in "…" when cut.
// If width is 0 or negative, returns s unchanged.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return s[:FitIndex(s, width-1)] + ellipsis
}
