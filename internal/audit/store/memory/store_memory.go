package memory

import (
	"context"
	"sync"
	"time"

	"recordgate/internal/audit"
)

// InMemoryStore is an append-only audit sink for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []audit.Record
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{now: time.Now}
}

// Insert appends record, stamping OccurredAt the way the database default does.
func (s *InMemoryStore) Insert(_ context.Context, record audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.OccurredAt = s.now()
	s.records = append(s.records, record)
	return nil
}

// ListByTenant returns up to limit records for tenantID, newest first.
// A non-positive limit returns every record for the tenant.
func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID string, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].TenantID != tenantID {
			continue
		}
		out = append(out, s.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// All returns every stored record in insertion order.
func (s *InMemoryStore) All() []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record{}, s.records...)
}
