// Package session persists per-file editing state so reopening a workbook
// restores the last sheet and cursor position.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// ErrNotFound is returned when no session row exists for a file.
var ErrNotFound = errors.New("session: file not recorded")

// Entry is one recorded file with its last cursor position.
type Entry struct {
	Path     string
	Sheet    int
	Row      int
	Col      int
	OpenedAt time.Time
}

// Store represents store data used by this package.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the requested operation.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate handles migrate.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS sessions (
			path TEXT PRIMARY KEY,
			sheet INTEGER NOT NULL DEFAULT 0,
			row INTEGER NOT NULL DEFAULT 1,
			col INTEGER NOT NULL DEFAULT 1,
			opened_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_opened_at ON sessions(opened_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite sessions: %w", err)
		}
	}
	return nil
}

// Touch upserts the cursor position for a file and bumps its opened_at.
func (s *Store) Touch(ctx context.Context, path string, sheet, row, col int) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("session path is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions(path, sheet, row, col, opened_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			sheet = excluded.sheet,
			row = excluded.row,
			col = excluded.col,
			opened_at = excluded.opened_at
	`, path, sheet, row, col, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Lookup returns the recorded state for one file.
func (s *Store) Lookup(ctx context.Context, path string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT path, sheet, row, col, opened_at
		FROM sessions
		WHERE path = ?
	`, path)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("lookup session: %w", err)
	}
	return entry, nil
}

// Recent returns the most recently opened files, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, sheet, row, col, opened_at
		FROM sessions
		ORDER BY opened_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return entries, nil
}

// Forget removes the row for one file.
func (s *Store) Forget(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (Entry, error) {
	var entry Entry
	var openedAt string
	if err := r.Scan(&entry.Path, &entry.Sheet, &entry.Row, &entry.Col, &openedAt); err != nil {
		return Entry{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, openedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse opened_at: %w", err)
	}
	entry.OpenedAt = ts
	return entry, nil
}
