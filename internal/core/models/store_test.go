package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nameID ComponentID = iota + 1
	healthID
)

type name struct{ Value string }

func (*name) TypeID() ComponentID { return nameID }

type health struct{ HP int }

func (*health) TypeID() ComponentID { return healthID }

func TestSpawnAndGet(t *testing.T) {
	s := NewStore()
	e := s.Spawn(&name{Value: "crate"}, &health{HP: 3})

	assert.False(t, e.IsNil())
	assert.True(t, s.Contains(e))
	assert.Equal(t, 1, s.Len())

	n, err := Get[*name](s, e)
	require.NoError(t, err)
	assert.Equal(t, "crate", n.Value)

	n.Value = "barrel"
	again, err := Get[*name](s, e)
	require.NoError(t, err)
	assert.Equal(t, "barrel", again.Value, "Get hands out the stored pointer")
}

func TestGetMissingComponent(t *testing.T) {
	s := NewStore()
	e := s.Spawn(&name{Value: "a"})

	_, err := Get[*health](s, e)
	assert.ErrorIs(t, err, ErrComponentNotFound)

	_, err = Get[*name](s, NilEntity)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestDespawnInvalidatesHandle(t *testing.T) {
	s := NewStore()
	old := s.Spawn(&name{Value: "old"})
	require.NoError(t, s.Despawn(old))

	assert.False(t, s.Contains(old))
	assert.ErrorIs(t, s.Despawn(old), ErrEntityNotFound)

	fresh := s.Spawn(&name{Value: "fresh"})
	assert.Equal(t, old.Index, fresh.Index, "slot is reused")
	assert.NotEqual(t, old.Generation, fresh.Generation)

	_, err := Get[*name](s, old)
	assert.ErrorIs(t, err, ErrEntityNotFound, "stale handle must not alias the new entity")
	assert.Equal(t, 0, s.Count(healthID))
}

func TestInsertRemove(t *testing.T) {
	s := NewStore()
	e := s.Spawn()
	assert.False(t, s.Has(e, healthID))

	require.NoError(t, s.Insert(e, &health{HP: 10}))
	assert.True(t, s.Has(e, healthID))

	require.NoError(t, s.Insert(e, &health{HP: 20}))
	h, err := Get[*health](s, e)
	require.NoError(t, err)
	assert.Equal(t, 20, h.HP)
	assert.Equal(t, 1, s.Count(healthID))

	require.NoError(t, s.Remove(e, healthID))
	assert.ErrorIs(t, s.Remove(e, healthID), ErrComponentNotFound)
	assert.True(t, s.Contains(e), "removing a component keeps the entity")
}

func TestSwapRemoveKeepsOthers(t *testing.T) {
	s := NewStore()
	a := s.Spawn(&name{Value: "a"})
	b := s.Spawn(&name{Value: "b"})
	c := s.Spawn(&name{Value: "c"})

	require.NoError(t, s.Despawn(a))

	for e, want := range map[Entity]string{b: "b", c: "c"} {
		n, err := Get[*name](s, e)
		require.NoError(t, err)
		assert.Equal(t, want, n.Value)
	}
}

func TestAllIteratesInSlotOrder(t *testing.T) {
	s := NewStore()
	a := s.Spawn(&name{Value: "a"})
	b := s.Spawn(&name{Value: "b"})
	c := s.Spawn(&name{Value: "c"})
	s.Spawn(&health{HP: 1})

	// Forces a swap inside the column.
	require.NoError(t, s.Remove(a, nameID))
	require.NoError(t, s.Insert(a, &name{Value: "a2"}))

	var got []string
	var owners []Entity
	for e, n := range All[*name](s) {
		owners = append(owners, e)
		got = append(got, n.Value)
	}
	assert.Equal(t, []string{"a2", "b", "c"}, got)
	assert.Equal(t, []Entity{a, b, c}, owners)
}

func TestAllStopsEarly(t *testing.T) {
	s := NewStore()
	for range 4 {
		s.Spawn(&name{})
	}
	n := 0
	for range All[*name](s) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestClear(t *testing.T) {
	s := NewStore()
	a := s.Spawn(&name{})
	s.Spawn(&health{})

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(a))
	assert.Empty(t, s.Entities())

	b := s.Spawn(&name{})
	assert.True(t, s.Contains(b))
	assert.NotEqual(t, a, b)
}
