package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/onnwee/chat-thief/db"
)

// SQL stores documents in the documents table created by db.RunMigrations.
// Postgres keeps the body as JSONB, SQLite as JSON text.
type SQL struct {
	db      *sql.DB
	dialect db.Dialect
}

// NewSQL wraps an open, migrated database.
func NewSQL(database *sql.DB, dialect db.Dialect) *SQL {
	return &SQL{db: database, dialect: dialect}
}

func (s *SQL) bind(pos int) string {
	if s.dialect == db.DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (s *SQL) Get(ctx context.Context, table, key string) (Document, error) {
	q := fmt.Sprintf(`SELECT body FROM documents WHERE tbl = %s AND doc_key = %s`, s.bind(1), s.bind(2))
	var body []byte
	err := s.db.QueryRowContext(ctx, q, table, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", table, key, err)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", table, key, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func (s *SQL) Put(ctx context.Context, table, key string, doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", table, key, err)
	}
	q := fmt.Sprintf(`INSERT INTO documents (tbl, doc_key, body, updated_at) VALUES (%s, %s, %s, CURRENT_TIMESTAMP)
		ON CONFLICT (tbl, doc_key) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		s.bind(1), s.bind(2), s.bind(3))
	if _, err := s.db.ExecContext(ctx, q, table, key, string(body)); err != nil {
		return fmt.Errorf("put %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQL) DeleteField(ctx context.Context, table, key, field string) error {
	var q string
	switch s.dialect {
	case db.DialectPostgres:
		q = `UPDATE documents SET body = body - $1::text, updated_at = CURRENT_TIMESTAMP WHERE tbl = $2 AND doc_key = $3`
	default:
		q = `UPDATE documents SET body = json_remove(body, '$."' || ? || '"'), updated_at = CURRENT_TIMESTAMP WHERE tbl = ? AND doc_key = ?`
	}
	if _, err := s.db.ExecContext(ctx, q, field, table, key); err != nil {
		return fmt.Errorf("delete field %s on %s/%s: %w", field, table, key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, table, key string) error {
	q := fmt.Sprintf(`DELETE FROM documents WHERE tbl = %s AND doc_key = %s`, s.bind(1), s.bind(2))
	if _, err := s.db.ExecContext(ctx, q, table, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQL) Keys(ctx context.Context, table string) ([]string, error) {
	q := fmt.Sprintf(`SELECT doc_key FROM documents WHERE tbl = %s ORDER BY doc_key`, s.bind(1))
	rows, err := s.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan %s key: %w", table, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return keys, nil
}

func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
