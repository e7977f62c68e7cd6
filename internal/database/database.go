// Package database owns the SQLite index: day metadata for quick listings
// plus the technician/service/skill catalogs.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the index database.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Metadata about days stored in the index for quick lookups.
		// The aggregate itself lives in one JSON file per date.
		`CREATE TABLE IF NOT EXISTS day_metadata (
			date TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'open',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			closed_at DATETIME,
			file_path TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS technicians (
			alias TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			name TEXT PRIMARY KEY,
			time_needed INTEGER NOT NULL,
			short_name TEXT NOT NULL DEFAULT '',
			is_bonus BOOLEAN NOT NULL DEFAULT 0,
			is_default BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tech_skills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tech_alias TEXT NOT NULL,
			service_name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(tech_alias, service_name)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_day_metadata_status ON day_metadata(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tech_skills_alias ON tech_skills(tech_alias)`,
		`CREATE INDEX IF NOT EXISTS idx_tech_skills_service ON tech_skills(service_name)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
