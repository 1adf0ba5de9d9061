package dataset

import (
	"errors"
	"testing"

	"github.com/hyperjump/hikari/internal/models"
)

func TestNewSnapshot(t *testing.T) {
	rows := []Row{
		{"activity": "Pizza delivery", "sector": "Food service", "category": "Restaurants"},
		{"activity": "Bakery", "sector": "Manufacturing"},
	}
	snap, err := NewSnapshot("mem", models.DefaultFields, rows)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", snap.Len())
	}
	recs := snap.Records()
	if got := recs[1].Value(models.FieldCategory); got != "" {
		t.Errorf("missing column should load as empty string, got %q", got)
	}
	if recs[0].ID() == "" || recs[0].ID() == recs[1].ID() {
		t.Errorf("ids should be set and distinct: %q %q", recs[0].ID(), recs[1].ID())
	}
	got, err := snap.Get(recs[0].ID())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(recs[0]) {
		t.Errorf("Get returned %v", got)
	}
	if snap.Position(recs[1].ID()) != 1 {
		t.Errorf("Position = %d, want 1", snap.Position(recs[1].ID()))
	}
}

func TestNewSnapshot_deterministicIDs(t *testing.T) {
	rows := []Row{{"activity": "Roofing", "sector": "Construction", "category": "Specialised"}}
	a, err := NewSnapshot("a", models.DefaultFields, rows)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSnapshot("b", models.DefaultFields, rows)
	if err != nil {
		t.Fatal(err)
	}
	if a.Records()[0].ID() != b.Records()[0].ID() {
		t.Error("the same row should get the same id across loads")
	}
}

func TestNewSnapshot_identicalRowsGetDistinctIDs(t *testing.T) {
	row := Row{"activity": "Roofing", "sector": "Construction"}
	snap, err := NewSnapshot("mem", models.DefaultFields, []Row{row, row, row})
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, r := range snap.Records() {
		if seen[r.ID()] {
			t.Fatalf("duplicate id %s", r.ID())
		}
		seen[r.ID()] = true
	}
}

func TestNewSnapshot_explicitIDs(t *testing.T) {
	snap, err := NewSnapshot("mem", models.DefaultFields, []Row{{"id": "a1", "activity": "Taxi"}})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Records()[0].ID() != "a1" {
		t.Errorf("explicit id not used: %s", snap.Records()[0].ID())
	}

	_, err = NewSnapshot("mem", models.DefaultFields, []Row{{"id": "a1"}, {"id": "a1"}})
	if err == nil {
		t.Error("duplicate explicit ids should be rejected")
	}
}

func TestNewSnapshot_noFields(t *testing.T) {
	if _, err := NewSnapshot("mem", nil, nil); err == nil {
		t.Error("expected error without fields")
	}
}

func TestSnapshot_GetMissing(t *testing.T) {
	snap, _ := NewSnapshot("mem", models.DefaultFields, nil)
	_, err := snap.Get("nope")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
	if snap.Position("nope") != -1 {
		t.Error("Position of a missing id should be -1")
	}
}

func TestSnapshot_Page(t *testing.T) {
	rows := make([]Row, 5)
	for i := range rows {
		rows[i] = Row{"activity": string(rune('a' + i))}
	}
	snap, err := NewSnapshot("mem", models.DefaultFields, rows)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		offset, limit int
		want          string
	}{
		{0, 2, "ab"},
		{3, 10, "de"},
		{-1, 1, "a"},
		{10, 2, ""},
		{1, 0, "bcde"},
	}
	for _, tt := range tests {
		var got string
		for _, r := range snap.Page(tt.offset, tt.limit) {
			got += r.Value(models.FieldActivity)
		}
		if got != tt.want {
			t.Errorf("Page(%d, %d) = %q, want %q", tt.offset, tt.limit, got, tt.want)
		}
	}
}

func TestSnapshot_RecordsIsCopy(t *testing.T) {
	snap, _ := NewSnapshot("mem", models.DefaultFields, []Row{{"activity": "Hotel"}})
	recs := snap.Records()
	recs[0] = models.Record{}
	if snap.Records()[0].Value(models.FieldActivity) != "Hotel" {
		t.Error("mutating the returned slice changed the snapshot")
	}
	if !snap.HasField(models.FieldSector) || snap.HasField("price") {
		t.Error("HasField reports the wrong schema")
	}
}
