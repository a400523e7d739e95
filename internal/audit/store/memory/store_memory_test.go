package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/internal/audit"
)

func TestInMemoryStore_StampsOccurredAt(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewInMemoryStore()
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Insert(context.Background(), audit.Record{TenantID: "t1", Action: "create"}))

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, fixed, all[0].OccurredAt)
}

func TestInMemoryStore_ListByTenant(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	for _, r := range []audit.Record{
		{TenantID: "t1", Action: "create"},
		{TenantID: "t2", Action: "create"},
		{TenantID: "t1", Action: "update"},
		{TenantID: "t1", Action: "delete"},
	} {
		require.NoError(t, s.Insert(ctx, r))
	}

	t.Run("newest first and scoped to tenant", func(t *testing.T) {
		got, err := s.ListByTenant(ctx, "t1", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "delete", got[0].Action)
		assert.Equal(t, "create", got[2].Action)
	})

	t.Run("limit caps results", func(t *testing.T) {
		got, err := s.ListByTenant(ctx, "t1", 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unknown tenant is empty", func(t *testing.T) {
		got, err := s.ListByTenant(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
