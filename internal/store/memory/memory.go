// Package memory provides an in-memory core.Store used by tests and
// dry runs. It enforces the same conflict-skip insert semantics as the
// postgres store and preserves insertion order for List.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lamkw/datapipe/internal/core"
)

// Store keeps rows per entity behind a mutex.
type Store struct {
	mu   sync.Mutex
	defs map[string]core.EntityDefinition
	rows map[string][]core.Row
	keys map[string]map[string]bool

	// Now stamps created_at columns; swap in tests for determinism.
	Now func() time.Time
}

// New builds a store aware of the given entity definitions. Natural-key
// conflict detection uses each definition's NaturalKey.
func New(defs ...core.EntityDefinition) *Store {
	s := &Store{
		defs: make(map[string]core.EntityDefinition, len(defs)),
		rows: make(map[string][]core.Row, len(defs)),
		keys: make(map[string]map[string]bool, len(defs)),
		Now:  time.Now,
	}
	for _, def := range defs {
		s.defs[def.Info.Key] = def
		s.rows[def.Info.Key] = nil
		s.keys[def.Info.Key] = make(map[string]bool)
	}
	return s
}

func (s *Store) def(entity string) (core.EntityDefinition, error) {
	def, ok := s.defs[entity]
	if !ok {
		return core.EntityDefinition{}, fmt.Errorf("unknown entity: %s", entity)
	}
	return def, nil
}

// Keys returns the stored natural keys for entity.
func (s *Store) Keys(_ context.Context, entity string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.def(entity); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(s.keys[entity]))
	for k := range s.keys[entity] {
		out[k] = true
	}
	return out, nil
}

// Insert appends rows, skipping natural-key conflicts, and returns the
// number inserted.
func (s *Store) Insert(_ context.Context, entity string, rows []core.Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.def(entity)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		row = row.Clone()
		if def.NaturalKey != nil {
			key := def.NaturalKey(row)
			if s.keys[entity][key] {
				continue
			}
			s.keys[entity][key] = true
		}
		s.stampDefaults(def, row)
		s.rows[entity] = append(s.rows[entity], row)
		inserted++
	}
	return inserted, nil
}

// List returns copies of the stored rows in insertion order.
func (s *Store) List(_ context.Context, entity string) ([]core.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.def(entity); err != nil {
		return nil, err
	}
	out := make([]core.Row, len(s.rows[entity]))
	for i, row := range s.rows[entity] {
		out[i] = row.Clone()
	}
	return out, nil
}

// DeleteAll clears the entity.
func (s *Store) DeleteAll(_ context.Context, entity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.def(entity); err != nil {
		return err
	}
	s.rows[entity] = nil
	s.keys[entity] = make(map[string]bool)
	return nil
}

// stampDefaults fills system-assigned columns the way the database
// would, so exports look the same against either store.
func (s *Store) stampDefaults(def core.EntityDefinition, row core.Row) {
	for _, col := range def.ExportColumns {
		if col == "created_at" && row[col] == "" {
			row[col] = s.Now().UTC().Format(time.RFC3339)
		}
	}
}
