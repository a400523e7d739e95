package records

import (
	"context"
	"sort"
	"time"
)

// Record is a tenant-owned entry of one resource kind. Name is a display label;
// Fields hold the record's data and are never copied into the audit trail.
type Record struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	Resource  string            `json:"resource"`
	Name      string            `json:"name"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Store persists records. Implementations scope every key by tenant and
// resource and return sentinel.ErrNotFound / sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, r Record) error
	Get(ctx context.Context, tenantID, resource, id string) (Record, error)
	List(ctx context.Context, tenantID, resource string) ([]Record, error)
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, tenantID, resource, id string) error
}

// fieldNames lists the keys of fields in a stable order. Only names go to the
// audit trail.
func fieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortByCreated(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
}
