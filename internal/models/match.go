package models

import (
	"encoding/json"
	"fmt"
)

// MatchRange is an inclusive [Start, End] byte range within one field value.
type MatchRange struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r MatchRange) Len() int { return r.End - r.Start + 1 }

// MarshalJSON encodes the range as a two-element array.
func (r MatchRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Start, r.End})
}

// UnmarshalJSON decodes a two-element array.
func (r *MatchRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("match range: expected [start, end], got %d values", len(pair))
	}
	r.Start, r.End = pair[0], pair[1]
	return nil
}

// FieldMatch associates the matched ranges of one field.
// Ranges are ascending and non-overlapping.
type FieldMatch struct {
	Field  Field        `json:"field"`
	Ranges []MatchRange `json:"ranges"`
}

// SearchResult is a single matcher hit: the original record, its field matches and relevance.
type SearchResult struct {
	Record  Record       `json:"record"`
	Matches []FieldMatch `json:"matches"`
	Score   float64      `json:"score"`
	Rank    int          `json:"rank"`
}
