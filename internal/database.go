package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createStateTableSQL = `
CREATE TABLE IF NOT EXISTS viewer_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteStateStore keeps state in a SQLite table
type SQLiteStateStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStateStore opens (creating if needed) the state database at path
func OpenSQLiteStateStore(path string) (*SQLiteStateStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StateError{Op: "open", Key: path, Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StateError{Op: "open", Key: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	// A single connection keeps ":memory:" databases from splitting per conn
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StateError{Op: "open", Key: path, Err: fmt.Errorf("database ping failed: %w", err)}
	}
	if _, err := db.Exec(createStateTableSQL); err != nil {
		db.Close()
		return nil, &StateError{Op: "open", Key: path, Err: fmt.Errorf("failed to create state table: %w", err)}
	}

	return &SQLiteStateStore{db: db, path: path}, nil
}

// Path returns the database file path
func (s *SQLiteStateStore) Path() string {
	return s.path
}

func (s *SQLiteStateStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM viewer_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StateError{Op: "get", Key: key, Err: fmt.Errorf("query failed: %w", err)}
	}
	return value, true, nil
}

func (s *SQLiteStateStore) Set(key, value string) error {
	query := `INSERT INTO viewer_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return &StateError{Op: "set", Key: key, Err: fmt.Errorf("upsert failed: %w", err)}
	}
	return nil
}

func (s *SQLiteStateStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM viewer_state WHERE key = ?", key); err != nil {
		return &StateError{Op: "delete", Key: key, Err: fmt.Errorf("delete failed: %w", err)}
	}
	return nil
}

func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}
