package models

import (
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SearchQuery
		wantErr bool
	}{
		{"empty query is valid", &SearchQuery{Query: ""}, false},
		{"valid query", &SearchQuery{Query: "pizza"}, false},
		{"sets default limit", &SearchQuery{Query: "x", Limit: 0}, false},
		{"keeps large limit", &SearchQuery{Query: "x", Limit: 200}, false},
		{"negative limit", &SearchQuery{Query: "x", Limit: -1}, true},
		{"dotted field", &SearchQuery{Query: "x", Fields: []Field{"a.b"}}, true},
		{"known fields", &SearchQuery{Query: "x", Fields: []Field{FieldSector}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if tt.query.Limit == 0 {
					t.Error("expected default limit to be set")
				}
			}
		})
	}
}

func TestSearchQuery_ValidateLeavesLimitUncapped(t *testing.T) {
	q := &SearchQuery{Query: "pizza", Limit: 250}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Limit != 250 {
		t.Errorf("Limit = %d, want 250", q.Limit)
	}
}

func TestSearchQuery_ValidateTrims(t *testing.T) {
	q := &SearchQuery{Query: "  pizza  "}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Query != "pizza" {
		t.Errorf("Query = %q, want %q", q.Query, "pizza")
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields([]string{" activity", "sector "})
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 2 || fields[0] != FieldActivity || fields[1] != FieldSector {
		t.Errorf("ParseFields = %v", fields)
	}
	for _, bad := range [][]string{{""}, {"id"}, {"a.b"}, {"x", "x"}} {
		if _, err := ParseFields(bad); err == nil {
			t.Errorf("ParseFields(%q) should fail", bad)
		}
	}
}
