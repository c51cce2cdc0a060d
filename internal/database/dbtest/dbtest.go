// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"comida-a-casa/internal/database"
)

// New returns a migrated database in t's temp dir, closed on cleanup.
func New(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
