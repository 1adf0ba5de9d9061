package matcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
)

var testRows = [][3]string{
	{"Pizza delivery", "Food service", "Restaurants"},
	{"Pizza restaurant operation", "Food service", "Restaurants"},
	{"Café operation", "Food service", "Cafés and bars"},
	{"Retail sale of books", "Wholesale and retail trade", "Retail"},
	{"Courier and parcel delivery", "Transportation and storage", "Postal and courier"},
	{"Software development", "Information and communication", "Computer programming"},
}

func testRecords() []models.Record {
	out := make([]models.Record, len(testRows))
	for i, row := range testRows {
		out[i] = models.NewRecord(fmt.Sprintf("r%d", i), models.DefaultFields, map[models.Field]string{
			models.FieldActivity: row[0],
			models.FieldSector:   row[1],
			models.FieldCategory: row[2],
		})
	}
	return out
}

func indexed(t *testing.T, m Matcher) Matcher {
	t.Helper()
	if err := m.Index(context.Background(), testRecords()); err != nil {
		t.Fatalf("Index: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func search(t *testing.T, m Matcher, query string, opts *SearchOptions) []models.SearchResult {
	t.Helper()
	results, err := m.Search(context.Background(), query, opts)
	if err != nil {
		t.Fatalf("Search(%q): %v", query, err)
	}
	checkContract(t, results)
	return results
}

// checkContract verifies ranks and that every range can be highlighted.
func checkContract(t *testing.T, results []models.SearchResult) {
	t.Helper()
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, r.Rank)
		}
		if len(r.Matches) == 0 {
			t.Errorf("result %s has no matches", r.Record.ID())
		}
		for _, fm := range r.Matches {
			text, ok := r.Record.Get(fm.Field)
			if !ok {
				t.Errorf("result %s: unknown field %s", r.Record.ID(), fm.Field)
				continue
			}
			if _, err := highlight.Field(text, fm.Ranges, highlight.DefaultMarkers()); err != nil {
				t.Errorf("result %s field %s: %v", r.Record.ID(), fm.Field, err)
			}
		}
	}
}

func find(results []models.SearchResult, activity string) *models.SearchResult {
	for i := range results {
		if results[i].Record.Value(models.FieldActivity) == activity {
			return &results[i]
		}
	}
	return nil
}

func rangesOf(r *models.SearchResult, f models.Field) []models.MatchRange {
	if r == nil {
		return nil
	}
	for _, fm := range r.Matches {
		if fm.Field == f {
			return fm.Ranges
		}
	}
	return nil
}

func sameRanges(a, b []models.MatchRange) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
