// Package memory keeps summary logs in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"biomassoutput/internal/persistence/core"
)

// Store implements core.Store.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// New returns an empty in-memory store.
func New() *Store { return &Store{tables: make(map[string]*table)} }

// Driver returns the table driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Open starts the named log empty, replacing any earlier log of that name.
func (s *Store) Open(_ context.Context, schema core.Schema) (core.Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	t := &table{schema: cloneSchema(schema)}
	s.mu.Lock()
	s.tables[schema.Name] = t
	s.mu.Unlock()
	return t, nil
}

// Lookup returns an opened log by name.
func (s *Store) Lookup(name string) (core.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	return t, ok
}

type table struct {
	mu     sync.RWMutex
	schema core.Schema
	rows   []core.Row
}

func (t *table) Schema() core.Schema { return cloneSchema(t.schema) }

func (t *table) Append(_ context.Context, rows []core.Row) error {
	if err := core.CheckRows(t.schema, rows); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range rows {
		t.rows = append(t.rows, cloneRow(r))
	}
	return nil
}

func (t *table) Rows(_ context.Context) ([]core.Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = cloneRow(r)
	}
	return out, nil
}

func cloneRow(r core.Row) core.Row {
	r.AboveGroundBiomass = append([]float64(nil), r.AboveGroundBiomass...)
	return r
}

func cloneSchema(s core.Schema) core.Schema {
	s.Species = append([]string(nil), s.Species...)
	return s
}
