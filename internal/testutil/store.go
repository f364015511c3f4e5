package testutil

import (
	"testing"

	"github.com/kwheeler/garage/internal/database"
	"github.com/kwheeler/garage/internal/storage"
)

// NewTestStore returns a key-value store backed by an in-memory SQLite
// database, migrated and closed with the test.
func NewTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// Every pool connection to :memory: opens its own empty database; a
	// single connection keeps concurrent test goroutines on one store.
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return storage.NewSQLiteStore(db)
}
