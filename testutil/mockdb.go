package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateStateDB creates a viewer state database at dbPath holding values,
// the way an earlier run would have left it
func CreateStateDB(t *testing.T, dbPath string, values map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS viewer_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create viewer_state table: %v", err)
	}

	for key, value := range values {
		if _, err := db.Exec("INSERT INTO viewer_state (key, value) VALUES (?, ?)", key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
}

// ReadStateValue reads one value straight from a state database
func ReadStateValue(t *testing.T, dbPath, key string) (string, bool) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var value string
	err = db.QueryRow("SELECT value FROM viewer_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", key, err)
	}
	return value, true
}
