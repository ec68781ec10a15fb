package docstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/onnwee/chat-thief/db"
)

func newMockSQL(t *testing.T, dialect db.Dialect) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQL(database, dialect), mock
}

func TestSQLGetWrapsQueryErrors(t *testing.T) {
	s, mock := newMockSQL(t, db.DialectSQLite)
	mock.ExpectQuery(`SELECT body FROM documents WHERE tbl = \? AND doc_key = \?`).
		WithArgs("users", "uzi").
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.Get(context.Background(), "users", "uzi")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want wrapped driver error", err)
	}
	if !strings.Contains(err.Error(), "get users/uzi") {
		t.Errorf("error = %q, want table/key context", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLGetRejectsCorruptBody(t *testing.T) {
	s, mock := newMockSQL(t, db.DialectPostgres)
	mock.ExpectQuery(`SELECT body FROM documents WHERE tbl = \$1 AND doc_key = \$2`).
		WithArgs("users", "uzi").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte("{not json")))

	if _, err := s.Get(context.Background(), "users", "uzi"); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("Get = %v, want decode error", err)
	}
}

func TestSQLPutUsesDialectPlaceholders(t *testing.T) {
	s, mock := newMockSQL(t, db.DialectPostgres)
	mock.ExpectExec(`INSERT INTO documents \(tbl, doc_key, body, updated_at\) VALUES \(\$1, \$2, \$3`).
		WithArgs("commands", "clap", `{"cost":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := SetField(context.Background(), nopReader{s}, "commands", "clap", "cost", 1); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLKeysScanError(t *testing.T) {
	s, mock := newMockSQL(t, db.DialectSQLite)
	mock.ExpectQuery(`SELECT doc_key FROM documents WHERE tbl = \?`).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"doc_key"}).AddRow("uzi").RowError(0, errors.New("row gone")))

	if _, err := s.Keys(context.Background(), "users"); err == nil {
		t.Fatal("expected error from failing row")
	}
}

func TestSQLDeleteFieldPostgres(t *testing.T) {
	s, mock := newMockSQL(t, db.DialectPostgres)
	mock.ExpectExec(`UPDATE documents SET body = body - \$1::text`).
		WithArgs("tags", "users", "uzi").
		WillReturnError(errors.New("connection reset"))

	err := s.DeleteField(context.Background(), "users", "uzi", "tags")
	if err == nil || !strings.Contains(err.Error(), "delete field tags on users/uzi") {
		t.Fatalf("DeleteField = %v", err)
	}
}

// nopReader reports every document as missing so SetField goes straight to Put.
type nopReader struct{ *SQL }

func (nopReader) Get(context.Context, string, string) (Document, error) { return nil, ErrNotFound }
