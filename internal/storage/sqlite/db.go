// Package sqlite wires the matching engine's canonical SQLite schema:
// opening the database connection and applying migrations.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open creates a *sql.DB for dbPath, creating its parent directory if
// needed. dbPath may be ":memory:" for tests.
func Open(dbPath string, maxOpenConns, maxIdleConns int) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			dir := filepath.Dir(dbPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database at %s: %w", dbPath, err)
	}

	return db, nil
}
