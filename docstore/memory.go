package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory is an in-process Store. Documents are copied on the way in and out so
// callers never share maps with the store.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]map[string]Document
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]Document)}
}

func (m *Memory) Get(_ context.Context, table, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) Put(_ context.Context, table, key string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		t = make(map[string]Document)
		m.tables[table] = t
	}
	t[key] = cloneDoc(doc)
	return nil
}

func (m *Memory) DeleteField(_ context.Context, table, key, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.tables[table][key]; ok {
		delete(doc, field)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, table, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables[table], key)
	return nil
}

func (m *Memory) Keys(_ context.Context, table string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.tables[table]))
	for k := range m.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
