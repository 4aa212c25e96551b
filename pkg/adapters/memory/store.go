// Package memory provides in-memory store implementations.
// Useful for library-embedded pipelines and tests; nothing survives the
// process.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cairn/pkg/domain"
)

// RecordStore implements ports.RecordStore in memory.
// Safe for concurrent use.
type RecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		data: make(map[string]*domain.RunRecord),
	}
}

// Save persists the record in memory.
func (s *RecordStore) Save(ctx context.Context, name string, record *domain.RunRecord) error {
	copied := *record

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = &copied
	return nil
}

// Load retrieves the record from memory.
func (s *RecordStore) Load(ctx context.Context, name string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[name]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	// Copy on read so the caller can't mutate store state by pointer.
	ret := *record
	return &ret, nil
}

// Delete removes the record.
func (s *RecordStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the names of all recorded targets.
func (s *RecordStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	return names, nil
}

// ResultStore implements ports.ResultStore in memory.
// Values are held as-is, so arbitrary Go values are supported (unlike the
// persisted backends, which require JSON round-trippable values).
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]any),
	}
}

// Put stores the value.
func (s *ResultStore) Put(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = value
	return nil
}

// Get retrieves a stored value.
func (s *ResultStore) Get(ctx context.Context, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[name]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	return value, nil
}

// Delete removes a single value.
func (s *ResultStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// Clear removes all values.
func (s *ResultStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]any)
	return nil
}
