package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordgate/pkg/platform/sentinel"
)

// runStoreContract exercises the behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	contact := func(id string, offset time.Duration) Record {
		return Record{
			ID:        id,
			TenantID:  "t1",
			Resource:  "contacts",
			Name:      "Contact " + id,
			Fields:    map[string]string{"email": id + "@example.com"},
			CreatedAt: base.Add(offset),
			UpdatedAt: base.Add(offset),
		}
	}

	t.Run("create then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, contact("c-1", 0)))

		got, err := s.Get(ctx, "t1", "contacts", "c-1")
		require.NoError(t, err)
		assert.Equal(t, "Contact c-1", got.Name)
		assert.Equal(t, "c-1@example.com", got.Fields["email"])
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, contact("c-1", 0)))
		assert.ErrorIs(t, s.Create(ctx, contact("c-1", 0)), sentinel.ErrConflict)
	})

	t.Run("records are scoped by tenant and resource", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, contact("c-1", 0)))

		_, err := s.Get(ctx, "t2", "contacts", "c-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.Get(ctx, "t1", "notes", "c-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		other, err := s.List(ctx, "t2", "contacts")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("colons in ids cannot reach another tenant", func(t *testing.T) {
		s := newStore(t)
		victim := Record{ID: "Y", TenantID: "t:contacts", Resource: "notes", Name: "Victim", CreatedAt: base, UpdatedAt: base}
		require.NoError(t, s.Create(ctx, victim))

		_, err := s.Get(ctx, "t", "contacts", "notes:Y")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		intruder := Record{ID: "notes:Y", TenantID: "t", Resource: "contacts", Name: "Intruder", CreatedAt: base, UpdatedAt: base}
		assert.ErrorIs(t, s.Update(ctx, intruder), sentinel.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "t", "contacts", "notes:Y"), sentinel.ErrNotFound)

		require.NoError(t, s.Create(ctx, Record{ID: "notes", TenantID: "t", Resource: "contacts", Name: "Own", CreatedAt: base, UpdatedAt: base}))
		own, err := s.List(ctx, "t", "contacts")
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, "Own", own[0].Name)

		got, err := s.Get(ctx, "t:contacts", "notes", "Y")
		require.NoError(t, err)
		assert.Equal(t, "Victim", got.Name)
		theirs, err := s.List(ctx, "t:contacts", "notes")
		require.NoError(t, err)
		assert.Len(t, theirs, 1)
	})

	t.Run("list is ordered by creation", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, contact("c-2", time.Minute)))
		require.NoError(t, s.Create(ctx, contact("c-1", 0)))
		require.NoError(t, s.Create(ctx, contact("c-3", 2*time.Minute)))

		got, err := s.List(ctx, "t1", "contacts")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c-1", "c-2", "c-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("update replaces and requires existence", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Update(ctx, contact("c-1", 0)), sentinel.ErrNotFound)

		require.NoError(t, s.Create(ctx, contact("c-1", 0)))
		updated := contact("c-1", 0)
		updated.Name = "Renamed"
		require.NoError(t, s.Update(ctx, updated))

		got, err := s.Get(ctx, "t1", "contacts", "c-1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("delete removes from get and list", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, contact("c-1", 0)))
		require.NoError(t, s.Delete(ctx, "t1", "contacts", "c-1"))

		_, err := s.Get(ctx, "t1", "contacts", "c-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		got, err := s.List(ctx, "t1", "contacts")
		require.NoError(t, err)
		assert.Empty(t, got)

		assert.ErrorIs(t, s.Delete(ctx, "t1", "contacts", "c-1"), sentinel.ErrNotFound)
	})
}
