// Package models defines core data structures for records, matches, queries, and search results.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field names a flat, highlightable record field.
type Field string

const (
	FieldActivity Field = "activity"
	FieldSector   Field = "sector"
	FieldCategory Field = "category"
)

// DefaultFields is the schema of the bundled sample dataset.
var DefaultFields = []Field{FieldActivity, FieldSector, FieldCategory}

// ParseFields converts configured field names into Fields.
// Names are trimmed; empty, duplicate, reserved ("id") and dotted names are rejected.
func ParseFields(names []string) ([]Field, error) {
	fields := make([]Field, 0, len(names))
	seen := make(map[Field]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			return nil, fmt.Errorf("field name cannot be empty")
		case name == "id":
			return nil, fmt.Errorf("field name %q is reserved for the record id", name)
		case strings.Contains(name, "."):
			return nil, fmt.Errorf("field %q: nested paths are not supported", name)
		}
		f := Field(name)
		if _, dup := seen[f]; dup {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return fields, nil
}

// Record is an immutable set of field values identified by ID.
// The zero value is an empty record with no fields.
type Record struct {
	id     string
	fields []Field
	values []string
}

// NewRecord builds a record with the given field order. Fields missing from values are empty.
func NewRecord(id string, fields []Field, values map[Field]string) Record {
	r := Record{
		id:     id,
		fields: append([]Field(nil), fields...),
		values: make([]string, len(fields)),
	}
	for i, f := range r.fields {
		r.values[i] = values[f]
	}
	return r
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Fields returns the record's fields in schema order.
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Get returns the value of f and whether the record has that field.
func (r Record) Get(f Field) (string, bool) {
	for i, rf := range r.fields {
		if rf == f {
			return r.values[i], true
		}
	}
	return "", false
}

// Value returns the value of f, or "" when the record has no such field.
func (r Record) Value(f Field) string {
	v, _ := r.Get(f)
	return v
}

// Has reports whether the record has field f.
func (r Record) Has(f Field) bool {
	_, ok := r.Get(f)
	return ok
}

// With returns a copy of r with f set to v. The receiver is never modified.
// Returns false (and r unchanged) when the record has no field f.
func (r Record) With(f Field, v string) (Record, bool) {
	for i, rf := range r.fields {
		if rf != f {
			continue
		}
		values := make([]string, len(r.values))
		copy(values, r.values)
		values[i] = v
		return Record{id: r.id, fields: r.fields, values: values}, true
	}
	return r, false
}

// Map returns the field values keyed by field name, without the ID.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for i, f := range r.fields {
		m[string(f)] = r.values[i]
	}
	return m
}

// Equal reports whether both records have the same ID, fields and values.
func (r Record) Equal(o Record) bool {
	if r.id != o.id || len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i] != o.fields[i] || r.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as a flat object: "id" first, then fields in schema order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	id, _ := json.Marshal(r.id)
	buf.WriteString(`"id":`)
	buf.Write(id)
	for i, f := range r.fields {
		k, err := json.Marshal(string(f))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object produced by MarshalJSON, keeping key order as field order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}
	var rec Record
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
		if key == "id" {
			rec.id = value
			continue
		}
		rec.fields = append(rec.fields, Field(key))
		rec.values = append(rec.values, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = rec
	return nil
}

// HighlightedRecord has the shape of a Record; matched fields hold marked-up text.
type HighlightedRecord struct {
	Record
}
