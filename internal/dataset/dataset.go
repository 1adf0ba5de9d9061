// Package dataset loads the static record set that the matchers index.
package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/hikari/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for dataset files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrRecordNotFound is returned when no record has the requested ID.
	ErrRecordNotFound = errors.New("record not found")
)

// recordNamespace seeds the deterministic IDs of records that have no "id" column.
var recordNamespace = uuid.MustParse("6f1c3a52-93d4-4d0e-8f53-2a8e1e7b9c41")

// Row is one raw dataset row keyed by column name.
type Row map[string]string

// Snapshot is an immutable, loaded dataset.
type Snapshot struct {
	source   string
	fields   []models.Field
	records  []models.Record
	byID     map[string]int
	loadedAt time.Time
}

// NewSnapshot builds records from rows. The "id" column is used as record ID when present;
// otherwise a UUIDv5 of the field values is derived. Duplicate explicit IDs are an error.
func NewSnapshot(source string, fields []models.Field, rows []Row) (*Snapshot, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("dataset %s: no fields configured", source)
	}
	s := &Snapshot{
		source:   source,
		fields:   append([]models.Field(nil), fields...),
		records:  make([]models.Record, 0, len(rows)),
		byID:     make(map[string]int, len(rows)),
		loadedAt: time.Now(),
	}
	for i, row := range rows {
		values := make(map[models.Field]string, len(fields))
		for _, f := range fields {
			values[f] = row[string(f)]
		}
		id := strings.TrimSpace(row["id"])
		if id != "" {
			if _, dup := s.byID[id]; dup {
				return nil, fmt.Errorf("dataset %s: duplicate record id %q (row %d)", source, id, i+1)
			}
		} else {
			id = RecordID(fields, values)
			for n := 1; ; n++ {
				if _, dup := s.byID[id]; !dup {
					break
				}
				id = RecordID(fields, values, fmt.Sprint(n))
			}
		}
		s.byID[id] = len(s.records)
		s.records = append(s.records, models.NewRecord(id, s.fields, values))
	}
	return s, nil
}

// RecordID derives a stable ID from field values. Extra parts disambiguate identical rows.
func RecordID(fields []models.Field, values map[models.Field]string, extra ...string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(string(f))
		b.WriteByte(0)
		b.WriteString(values[f])
		b.WriteByte(0)
	}
	for _, e := range extra {
		b.WriteString(e)
		b.WriteByte(0)
	}
	return uuid.NewSHA1(recordNamespace, []byte(b.String())).String()
}

// Source returns the path the snapshot was loaded from ("" for the sample dataset).
func (s *Snapshot) Source() string { return s.source }

// Fields returns the highlightable fields in schema order.
func (s *Snapshot) Fields() []models.Field {
	return append([]models.Field(nil), s.fields...)
}

// HasField reports whether f is part of the schema.
func (s *Snapshot) HasField(f models.Field) bool {
	for _, sf := range s.fields {
		if sf == f {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Records returns the records in dataset order. The slice is a copy; records are immutable.
func (s *Snapshot) Records() []models.Record {
	return append([]models.Record(nil), s.records...)
}

// Page returns up to limit records starting at offset.
func (s *Snapshot) Page(offset, limit int) []models.Record {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.records) {
		offset = len(s.records)
	}
	end := offset + limit
	if limit <= 0 || end > len(s.records) {
		end = len(s.records)
	}
	return append([]models.Record(nil), s.records[offset:end]...)
}

// Get returns the record with the given ID.
func (s *Snapshot) Get(id string) (models.Record, error) {
	i, ok := s.byID[id]
	if !ok {
		return models.Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return s.records[i], nil
}

// Position returns the dataset index of the record with the given ID, or -1.
func (s *Snapshot) Position(id string) int {
	if i, ok := s.byID[id]; ok {
		return i
	}
	return -1
}
