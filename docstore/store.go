// Package docstore is the schemaless document store behind the economy.
//
// Documents live in named tables and are keyed by a string (always a lowercase
// name for users and commands). A document is a flat JSON object; each field is
// kept as raw JSON so backends never need to know the economy's types.
//
// Backends:
//   - Memory: process-local maps, used by tests and STORE_BACKEND=memory.
//   - SQL: one documents table on Postgres (pgx) or SQLite (modernc).
//   - Redis: one hash per document plus a key-set per table.
//
// Every call is a single read or a single write. There are no multi-document
// transactions; callers that need read-modify-write semantics serialize per key
// themselves (see economy.Ledger).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document exists for the key.
var ErrNotFound = errors.New("docstore: document not found")

// Document is a flat JSON object with raw field values.
type Document map[string]json.RawMessage

// Store is the narrow interface the core depends on.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, table, key string) (Document, error)
	// Put upserts the whole document.
	Put(ctx context.Context, table, key string, doc Document) error
	// DeleteField removes one field; missing documents or fields are not an error.
	DeleteField(ctx context.Context, table, key, field string) error
	// Delete removes the document; missing documents are not an error.
	Delete(ctx context.Context, table, key string) error
	// Keys lists every key in the table, sorted.
	Keys(ctx context.Context, table string) ([]string, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Encode converts a JSON-tagged struct into a Document.
func Encode(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode fills a JSON-tagged struct from a Document. Unknown fields are ignored.
func Decode(doc Document, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// GetInto loads a document and decodes it into v.
func GetInto(ctx context.Context, s Store, table, key string, v any) error {
	doc, err := s.Get(ctx, table, key)
	if err != nil {
		return err
	}
	return Decode(doc, v)
}

// PutFrom encodes v and upserts it.
func PutFrom(ctx context.Context, s Store, table, key string, v any) error {
	doc, err := Encode(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, table, key, doc)
}

// SetField upserts a single field, creating the document when missing.
func SetField(ctx context.Context, s Store, table, key, field string, value any) error {
	doc, err := s.Get(ctx, table, key)
	if errors.Is(err, ErrNotFound) {
		doc = Document{}
	} else if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode field %s: %w", field, err)
	}
	doc[field] = raw
	return s.Put(ctx, table, key, doc)
}

// AddToSet adds value to the string-set field; it reports whether the set changed.
func AddToSet(ctx context.Context, s Store, table, key, field, value string) (bool, error) {
	return updateSet(ctx, s, table, key, field, func(set []string) ([]string, bool) {
		for _, v := range set {
			if v == value {
				return set, false
			}
		}
		return append(set, value), true
	})
}

// RemoveFromSet removes value from the string-set field; it reports whether the set changed.
func RemoveFromSet(ctx context.Context, s Store, table, key, field, value string) (bool, error) {
	return updateSet(ctx, s, table, key, field, func(set []string) ([]string, bool) {
		for i, v := range set {
			if v == value {
				return append(set[:i:i], set[i+1:]...), true
			}
		}
		return set, false
	})
}

func updateSet(ctx context.Context, s Store, table, key, field string, fn func([]string) ([]string, bool)) (bool, error) {
	doc, err := s.Get(ctx, table, key)
	if errors.Is(err, ErrNotFound) {
		doc = Document{}
	} else if err != nil {
		return false, err
	}
	var set []string
	if raw, ok := doc[field]; ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &set); err != nil {
			return false, fmt.Errorf("decode set %s: %w", field, err)
		}
	}
	set, changed := fn(set)
	if !changed {
		return false, nil
	}
	if set == nil {
		set = []string{}
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return false, fmt.Errorf("encode set %s: %w", field, err)
	}
	doc[field] = raw
	return true, s.Put(ctx, table, key, doc)
}
