package matcher

import (
	"context"
	"testing"

	"github.com/hyperjump/hikari/internal/models"
)

func TestSahilmMatcher_fuzzy(t *testing.T) {
	m := indexed(t, NewSahilmMatcher())
	results := search(t, m, "pzza", &SearchOptions{Fuzzy: true})
	r := find(results, "Pizza delivery")
	if r == nil {
		t.Fatal("expected Pizza delivery")
	}
	want := []models.MatchRange{{Start: 0, End: 0}, {Start: 2, End: 4}}
	if got := rangesOf(r, models.FieldActivity); !sameRanges(got, want) {
		t.Errorf("ranges = %v, want %v", got, want)
	}
}

func TestSahilmMatcher_substring(t *testing.T) {
	m := indexed(t, NewSahilmMatcher())
	results := search(t, m, "AND", nil)
	r := find(results, "Courier and parcel delivery")
	if r == nil {
		t.Fatal("expected Courier and parcel delivery")
	}
	want := []models.MatchRange{{Start: 8, End: 10}}
	if got := rangesOf(r, models.FieldActivity); !sameRanges(got, want) {
		t.Errorf("activity ranges = %v, want %v", got, want)
	}
	// "Postal and courier"
	want = []models.MatchRange{{Start: 7, End: 9}}
	if got := rangesOf(r, models.FieldCategory); !sameRanges(got, want) {
		t.Errorf("category ranges = %v, want %v", got, want)
	}
	if got := search(t, m, "pzza", nil); len(got) != 0 {
		t.Errorf("typo should not match without fuzzy, got %d", len(got))
	}
}

func TestSahilmMatcher_fuzzyKeepsSubstringMatches(t *testing.T) {
	m := NewSahilmMatcher()
	recs := []models.Record{
		models.NewRecord("ist", models.DefaultFields, map[models.Field]string{
			models.FieldActivity: "İstanbul ferry operation",
			models.FieldSector:   "Transportation",
		}),
	}
	if err := m.Index(context.Background(), recs); err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"ist", "istanbul"} {
		exact := search(t, m, q, nil)
		fuzzy := search(t, m, q, &SearchOptions{Fuzzy: true})
		if len(exact) != 1 {
			t.Errorf("%q exact: got %d results, want 1", q, len(exact))
		}
		if len(fuzzy) < len(exact) {
			t.Errorf("%q fuzzy: got %d results, exact got %d", q, len(fuzzy), len(exact))
		}
	}
}

func TestSahilmMatcher_rankingPrefersEarlyMatch(t *testing.T) {
	m := indexed(t, NewSahilmMatcher())
	results := search(t, m, "delivery", nil)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Record.Value(models.FieldActivity) != "Pizza delivery" {
		t.Errorf("first result = %q", results[0].Record.Value(models.FieldActivity))
	}
}

func TestSubstringRanges(t *testing.T) {
	tests := []struct {
		text, term string
		want       []models.MatchRange
	}{
		{"banana", "an", []models.MatchRange{{Start: 1, End: 2}, {Start: 3, End: 4}}},
		{"aaa", "aa", []models.MatchRange{{Start: 0, End: 1}}},
		{"CAFÉ", "é", []models.MatchRange{{Start: 3, End: 4}}},
		{"abc", "", nil},
		{"abc", "abcd", nil},
	}
	for _, tt := range tests {
		if got := substringRanges(tt.text, tt.term); !sameRanges(got, tt.want) {
			t.Errorf("substringRanges(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
		}
	}
}
