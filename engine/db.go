package engine

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenDB opens the SQLite file backing the scheduling data, creating it on
// first run. WAL keeps readers from blocking behind the single writer, and
// the pool is pinned to one connection since the driver serializes anyway.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, err
}

// OpenTestDB opens a throwaway database scoped to the test's temp dir.
func OpenTestDB(t *testing.T) *sql.DB {
	path := filepath.Join(t.TempDir(), "restauracao-test.sqlite3")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// MustMigrate applies a module's schema migration. Modules run this at
// construction time, so a bad migration fails the process before it serves.
func MustMigrate(db *sql.DB, migration string) {
	_, err := db.Exec(migration)
	if err != nil {
		panic(fmt.Errorf("migrating schema: %s", err))
	}
}
