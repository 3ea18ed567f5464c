package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS institutions (
    id          INTEGER PRIMARY KEY,
    position    INTEGER NOT NULL,
    name        TEXT NOT NULL,
    link        TEXT
);

CREATE TABLE IF NOT EXISTS rate_records (
    id              INTEGER PRIMARY KEY,
    institution_id  INTEGER NOT NULL REFERENCES institutions(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    loan_type_full  TEXT NOT NULL DEFAULT '',
    rate_str        TEXT NOT NULL DEFAULT '',
    numeric_rate    REAL,
    simplified_type TEXT NOT NULL DEFAULT 'other',
    year_term       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS imports (
    id           INTEGER PRIMARY KEY,
    source       TEXT,
    institutions INTEGER NOT NULL,
    rates        INTEGER NOT NULL,
    imported_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_institutions_position ON institutions(position);
CREATE INDEX IF NOT EXISTS idx_rate_records_institution ON rate_records(institution_id, position);
`

// Open opens or creates the SQLite cache and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
