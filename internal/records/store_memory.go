package records

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"recordgate/pkg/platform/sentinel"
)

type recordKey struct {
	tenantID string
	resource string
	id       string
}

// InMemoryStore keeps records in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[recordKey]Record)}
}

func keyOf(r Record) recordKey {
	return recordKey{tenantID: r.TenantID, resource: r.Resource, id: r.ID}
}

func (s *InMemoryStore) Create(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[keyOf(r)]; ok {
		return fmt.Errorf("record %s: %w", r.ID, sentinel.ErrConflict)
	}
	s.records[keyOf(r)] = clone(r)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, tenantID, resource, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[recordKey{tenantID, resource, id}]
	if !ok {
		return Record{}, fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	return clone(r), nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID, resource string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Record{}
	for k, r := range s.records {
		if k.tenantID == tenantID && k.resource == resource {
			out = append(out, clone(r))
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[keyOf(r)]; !ok {
		return fmt.Errorf("record %s: %w", r.ID, sentinel.ErrNotFound)
	}
	s.records[keyOf(r)] = clone(r)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, tenantID, resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey{tenantID, resource, id}
	if _, ok := s.records[k]; !ok {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.records, k)
	return nil
}

func clone(r Record) Record {
	r.Fields = maps.Clone(r.Fields)
	return r
}
