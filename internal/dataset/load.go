package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/hikari/internal/models"
)

//go:embed sample.json
var sampleData []byte

// Load reads the dataset at path, choosing the decoder by file extension.
// An empty path loads the bundled sample dataset.
func Load(path string, fields []models.Field) (*Snapshot, error) {
	if path == "" {
		rows, err := decodeJSON(sampleData)
		if err != nil {
			return nil, fmt.Errorf("sample dataset: %w", err)
		}
		return NewSnapshot("", fields, rows)
	}

	var (
		rows []Row
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		rows, err = loadJSON(path)
	case ".yaml", ".yml":
		rows, err = loadYAML(path)
	case ".xlsx":
		rows, err = loadXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		rows, err = loadSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q (supported: .json, .yaml, .yml, .xlsx, .db, .sqlite)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return NewSnapshot(path, fields, rows)
}

func loadJSON(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) ([]Row, error) {
	var raw []map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return toRows(raw), nil
}

func loadYAML(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return toRows(raw), nil
}

// loadXLSX reads the first sheet; the header row names the columns.
func loadXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = columnName(h)
	}
	out := make([]Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(Row, len(header))
		empty := true
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			row[name] = cells[i]
			if strings.TrimSpace(cells[i]) != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out, nil
}

// columnName normalizes a column or key name so every format matches field names alike.
func columnName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toRows(raw []map[string]interface{}) []Row {
	rows := make([]Row, 0, len(raw))
	for _, m := range raw {
		row := make(Row, len(m))
		for k, v := range m {
			name := columnName(k)
			if name == "" {
				continue
			}
			switch val := v.(type) {
			case nil:
				row[name] = ""
			case string:
				row[name] = val
			case json.Number:
				row[name] = val.String()
			default:
				row[name] = fmt.Sprint(val)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
