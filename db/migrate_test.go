package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Connect(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "migrate.sqlite"))
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestRunMigrationsSQLite(t *testing.T) {
	database := openSQLite(t)

	if err := RunMigrations(database, DialectSQLite); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	var name string
	err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='documents'`).Scan(&name)
	if err != nil {
		t.Fatalf("documents table missing: %v", err)
	}

	version, dirty, err := MigrationVersion(database, DialectSQLite)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if dirty {
		t.Errorf("migration version is dirty")
	}
	if version != 2 {
		t.Errorf("migration version = %d, want 2", version)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	database := openSQLite(t)
	for i := 0; i < 3; i++ {
		if err := RunMigrations(database, DialectSQLite); err != nil {
			t.Fatalf("run %d: RunMigrations() error = %v", i, err)
		}
	}
}

func TestRunMigrationsPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set; skipping postgres migration test")
	}
	database, err := Connect(context.Background(), DialectPostgres, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.Close()

	if err := RunMigrations(database, DialectPostgres); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	var exists bool
	err = database.QueryRow(`SELECT EXISTS (
		SELECT FROM information_schema.tables WHERE table_name = 'documents'
	)`).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check documents table: %v", err)
	}
	if !exists {
		t.Error("documents table does not exist after migration")
	}
}
