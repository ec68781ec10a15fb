package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/onnwee/chat-thief/db"
	"github.com/onnwee/chat-thief/docstore"
)

// SetupTestDB creates a Postgres connection and runs migrations.
// It skips the test if TEST_PG_DSN environment variable is not set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	database, err := db.Connect(context.Background(), db.DialectPostgres, dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.RunMigrations(database, db.DialectPostgres); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// SetupSQLiteDB opens a migrated SQLite database in a temp directory.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Connect(context.Background(), db.DialectSQLite, filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.RunMigrations(database, db.DialectSQLite); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewSQLiteStore returns a document store backed by a fresh SQLite file.
func NewSQLiteStore(t *testing.T) *docstore.SQL {
	t.Helper()
	return docstore.NewSQL(SetupSQLiteDB(t), db.DialectSQLite)
}
