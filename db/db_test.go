package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"postgres", DialectPostgres, false},
		{"PGX", DialectPostgres, false},
		{" sqlite ", DialectSQLite, false},
		{"sqlite3", DialectSQLite, false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConnectUnsupportedDialect(t *testing.T) {
	_, err := Connect(context.Background(), Dialect("bogus"), "")
	if err == nil || !strings.Contains(err.Error(), "unsupported sql dialect") {
		t.Fatalf("expected unsupported dialect error, got %v", err)
	}
}

func TestConnectSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "thief.sqlite")
	database, err := Connect(context.Background(), DialectSQLite, path)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()
	if err := database.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
