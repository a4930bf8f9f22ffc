// Package db keeps the install journal: every install attempt with its outcome,
// and the files left on disk by attempts that did not end in a registry entry.
package db

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the journal database file inside the data directory
const FileName = "ata.db"

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

// DB is the install journal
type DB struct {
	*sql.DB
}

// Open opens the journal stored in dataDir
func Open(dataDir string) (*DB, error) {
	return New(filepath.Join(dataDir, FileName))
}

// New opens the journal at path (":memory:" for a throwaway one) and brings
// its schema up to date
func New(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// One connection keeps ":memory:" databases alive across queries
	sqlDB.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	journal := &DB{DB: sqlDB}
	if err := journal.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	return journal, nil
}
