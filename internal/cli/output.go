// Package cli renders search responses for the hikari command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
	"github.com/hyperjump/hikari/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one line per hit.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("invalid output format %q (use text, compact or json)", s)
	}
}

// Marker decorates a matched segment in text output.
type Marker func(string) string

// BracketMarker wraps matches in square brackets.
func BracketMarker(s string) string { return "[" + s + "]" }

var matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// StyleMarker renders matches with style.
func StyleMarker(style lipgloss.Style) Marker {
	return func(s string) string { return style.Render(s) }
}

// MarkerFor picks ANSI styling when f is a terminal and brackets otherwise.
func MarkerFor(f *os.File) Marker {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return StyleMarker(matchStyle)
	}
	return BracketMarker
}

// compactWidth caps each compact line.
const compactWidth = 120

// WriteSearchResults writes response to w in the given format. mark decorates matched
// segments in text and compact output; nil means BracketMarker.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat, mark Marker) error {
	if mark == nil {
		mark = BracketMarker
	}
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeCompact(w, response, mark)
		return nil
	default:
		writeText(w, response, mark)
		return nil
	}
}

func writeText(w io.Writer, response *models.SearchResponse, mark Marker) {
	switch response.State {
	case models.StateIdle:
		fmt.Fprintf(w, "Query %q is too short to search.\n", response.Query)
		return
	case models.StateNoMatches:
		fmt.Fprintf(w, "\nNo matches for %q (%dms)\n", response.Query, response.QueryTime)
		writeSuggestions(w, response.Suggestions)
		return
	}
	fmt.Fprintf(w, "\nFound %d results in %dms", response.Total, response.QueryTime)
	if response.Matcher != "" {
		fmt.Fprintf(w, " (%s)", response.Matcher)
	}
	if response.AutoFuzzy {
		fmt.Fprint(w, " [fuzzy]")
	}
	fmt.Fprint(w, "\n\n")
	for _, hit := range response.Hits {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", hit.Rank, hit.Score)
		fmt.Fprintf(w, "ID: %s\n", hit.Record.ID())
		for _, f := range hit.Record.Fields() {
			fmt.Fprintf(w, "%s: %s\n", f, markField(hit, f, mark))
		}
		fmt.Fprintln(w)
	}
}

func writeCompact(w io.Writer, response *models.SearchResponse, mark Marker) {
	switch response.State {
	case models.StateIdle:
		return
	case models.StateNoMatches:
		fmt.Fprintln(w, "No matches")
		writeSuggestions(w, response.Suggestions)
		return
	}
	for _, hit := range response.Hits {
		fields := hit.Record.Fields()
		parts := make([]string, 0, len(fields))
		width := compactWidth / max(len(fields), 1)
		for _, f := range fields {
			parts = append(parts, markFieldWidth(hit, f, width, mark))
		}
		fmt.Fprintf(w, "%2d. %s\n", hit.Rank, strings.Join(parts, " | "))
	}
}

func writeSuggestions(w io.Writer, suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(suggestions, ", "))
}

func rangesOf(hit *models.SearchHit, f models.Field) []models.MatchRange {
	for _, m := range hit.Matches {
		if m.Field == f {
			return m.Ranges
		}
	}
	return nil
}

func markField(hit *models.SearchHit, f models.Field, mark Marker) string {
	value := hit.Record.Value(f)
	out, err := highlight.Apply(value, rangesOf(hit, f), nil, mark)
	if err != nil {
		return value
	}
	return out
}

// markFieldWidth cuts the plain value to width cells before marking, so markup never counts
// toward the width.
func markFieldWidth(hit *models.SearchHit, f models.Field, width int, mark Marker) string {
	value := hit.Record.Value(f)
	if utils.Truncate(value, width) == value {
		return markField(hit, f, mark)
	}
	n := utils.FitIndex(value, width-1)
	out, err := highlight.Apply(value[:n], highlight.Clip(rangesOf(hit, f), n), nil, mark)
	if err != nil {
		return utils.Truncate(value, width)
	}
	return out + "…"
}
