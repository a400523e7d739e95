package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	runStoreContract(t, func(*testing.T) Store { return NewInMemoryStore() })
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	fields := map[string]string{"phone": "555"}
	require.NoError(t, s.Create(ctx, Record{ID: "c-1", TenantID: "t1", Resource: "contacts", Name: "A", Fields: fields}))

	fields["phone"] = "changed"
	got, err := s.Get(ctx, "t1", "contacts", "c-1")
	require.NoError(t, err)
	got.Fields["phone"] = "mutated"

	again, err := s.Get(ctx, "t1", "contacts", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "555", again.Fields["phone"])
}
