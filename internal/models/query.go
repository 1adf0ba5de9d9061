package models

import (
	"fmt"
	"strings"
)

// SearchQuery represents a search-as-you-type request.
type SearchQuery struct {
	Query  string  `json:"query"`
	Limit  int     `json:"limit,omitempty"`
	Fuzzy  bool    `json:"fuzzy,omitempty"`  // enable edit-distance matching for typo tolerance
	Fields []Field `json:"fields,omitempty"` // restrict matching to these fields; empty = all dataset fields
}

// Validate trims the query and applies the default limit. It does not cap the limit;
// callers enforce their configured maximum.
// An empty query is valid (it yields the idle state); malformed field names are not.
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if len(q.Fields) > 0 {
		names := make([]string, len(q.Fields))
		for i, f := range q.Fields {
			names[i] = string(f)
		}
		fields, err := ParseFields(names)
		if err != nil {
			return err
		}
		q.Fields = fields
	}
	return nil
}

// QueryState describes what a search response represents.
type QueryState string

const (
	// StateIdle means the query was empty or too short to search.
	StateIdle QueryState = "idle"
	// StateMatched means at least one record matched.
	StateMatched QueryState = "matched"
	// StateNoMatches means the query was searched and nothing matched.
	StateNoMatches QueryState = "no_matches"
)

// SearchHit pairs a matched record with its highlighted form.
type SearchHit struct {
	Rank        int                `json:"rank"`
	Score       float64            `json:"score"`
	Record      Record             `json:"record"`
	Highlighted *HighlightedRecord `json:"highlighted,omitempty"`
	Matches     []FieldMatch       `json:"matches,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string       `json:"query"`
	State     QueryState   `json:"state"`
	Hits      []*SearchHit `json:"hits"`
	Total     int          `json:"total"`
	QueryTime int64        `json:"query_time_ms"`
	Matcher   string       `json:"matcher,omitempty"`
	// Suggestions contains "Did you mean?" alternatives when nothing matched.
	Suggestions []string `json:"suggestions,omitempty"`
	// AutoFuzzy is set when fuzzy matching was enabled automatically because
	// the exact search returned no results.
	AutoFuzzy bool `json:"auto_fuzzy,omitempty"`
}
