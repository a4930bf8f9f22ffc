package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Outcome of an install attempt
const (
	OutcomeRecorded = "recorded"
	OutcomeFailed   = "failed"
)

// Attempt is one run of the install pipeline
type Attempt struct {
	ID          string
	ArchivePath string
	ModName     string
	ModType     string
	Outcome     string
	FailedState string
	Reason      string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// OrphanedFile is a file copied into the game directory that no registry entry owns
type OrphanedFile struct {
	Path       string
	AttemptID  string
	RecordedAt time.Time
}

// SaveAttempt inserts or replaces an install attempt
func (d *DB) SaveAttempt(a *Attempt) error {
	if a.ID == "" {
		return errors.New("attempt id is required")
	}
	_, err := d.Exec(`
		INSERT OR REPLACE INTO install_attempts
		(id, archive_path, mod_name, mod_type, outcome, failed_state, reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ArchivePath, a.ModName, a.ModType, a.Outcome, a.FailedState, a.Reason, a.StartedAt, a.FinishedAt)
	if err != nil {
		return fmt.Errorf("saving attempt: %w", err)
	}
	return nil
}

// GetAttempt returns a single attempt by id
func (d *DB) GetAttempt(id string) (*Attempt, error) {
	row := d.QueryRow(`
		SELECT id, archive_path, mod_name, mod_type, outcome, failed_state, reason, started_at, finished_at
		FROM install_attempts WHERE id = ?
	`, id)

	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAttempts returns attempts newest first. limit <= 0 returns all of them.
func (d *DB) ListAttempts(limit int) ([]*Attempt, error) {
	query := `
		SELECT id, archive_path, mod_name, mod_type, outcome, failed_state, reason, started_at, finished_at
		FROM install_attempts ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*Attempt, error) {
	var a Attempt
	err := s.Scan(&a.ID, &a.ArchivePath, &a.ModName, &a.ModType, &a.Outcome,
		&a.FailedState, &a.Reason, &a.StartedAt, &a.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning attempt: %w", err)
	}
	return &a, nil
}

// SaveOrphanedFiles records paths left behind by an attempt. A path already in
// the ledger moves to the newer attempt.
func (d *DB) SaveOrphanedFiles(attemptID string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	stmt, err := tx.Prepare(`
		INSERT INTO orphaned_files (path, attempt_id, recorded_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET attempt_id = excluded.attempt_id, recorded_at = excluded.recorded_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range paths {
		if _, err := stmt.Exec(p, attemptID, now); err != nil {
			return fmt.Errorf("recording orphaned file %s: %w", p, err)
		}
	}

	return tx.Commit()
}

// ListOrphanedFiles returns the ledger sorted by path
func (d *DB) ListOrphanedFiles() ([]OrphanedFile, error) {
	rows, err := d.Query(`SELECT path, attempt_id, recorded_at FROM orphaned_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing orphaned files: %w", err)
	}
	defer rows.Close()

	var files []OrphanedFile
	for rows.Next() {
		var f OrphanedFile
		if err := rows.Scan(&f.Path, &f.AttemptID, &f.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning orphaned file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteOrphanedFile drops one path from the ledger
func (d *DB) DeleteOrphanedFile(path string) error {
	result, err := d.Exec("DELETE FROM orphaned_files WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting orphaned file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("orphaned file %s not found", path)
	}
	return nil
}

// ForgetOrphanedFiles drops any of paths from the ledger, typically because a
// later install now owns them
func (d *DB) ForgetOrphanedFiles(paths []string) error {
	for _, p := range paths {
		if _, err := d.Exec("DELETE FROM orphaned_files WHERE path = ?", p); err != nil {
			return fmt.Errorf("forgetting orphaned file %s: %w", p, err)
		}
	}
	return nil
}
