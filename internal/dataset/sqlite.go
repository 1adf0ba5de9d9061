package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	fields TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_position ON records(position);
`

// openSQLite opens or creates a SQLite database at dbPath and initializes the schema.
func openSQLite(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(recordsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Import writes every record of snap into the records table at dbPath, replacing its contents.
// It returns the number of records written.
func Import(ctx context.Context, dbPath string, snap *Snapshot) (int, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return 0, fmt.Errorf("failed to clear records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (id, position, fields) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, rec := range snap.records {
		fieldsJSON, err := json.Marshal(rec.Map())
		if err != nil {
			return 0, fmt.Errorf("failed to marshal record %s: %w", rec.ID(), err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID(), i, string(fieldsJSON)); err != nil {
			return 0, fmt.Errorf("failed to insert record %s: %w", rec.ID(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(snap.records), nil
}

func loadSQLite(dbPath string) ([]Row, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, fields FROM records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var id, fieldsJSON string
		if err := rows.Scan(&id, &fieldsJSON); err != nil {
			return nil, err
		}
		row := Row{}
		if fieldsJSON != "" {
			if err := json.Unmarshal([]byte(fieldsJSON), &row); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields of %s: %w", id, err)
			}
		}
		row["id"] = id
		out = append(out, row)
	}
	return out, rows.Err()
}
