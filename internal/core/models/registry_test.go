package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBothWays(t *testing.T) {
	r := NewRegistry()
	e := Entity{Index: 4, Generation: 1}
	require.NoError(t, r.Insert("door", e))

	h, ok := r.Handle("door")
	require.True(t, ok)
	assert.Equal(t, e, h)

	id, ok := r.ID(e)
	require.True(t, ok)
	assert.Equal(t, "door", id)
}

func TestRegistryRejectsCollisions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Insert("door", Entity{Index: 1, Generation: 1}))

	err := r.Insert("door", Entity{Index: 2, Generation: 1})
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = r.Insert("window", Entity{Index: 1, Generation: 1})
	assert.ErrorIs(t, err, ErrHandleRegistered)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	e := Entity{Index: 0, Generation: 1}
	require.NoError(t, r.Insert("a", e))

	got, ok := r.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, e, got)
	assert.False(t, r.Has("a"))
	_, ok = r.ID(e)
	assert.False(t, ok)

	_, ok = r.Remove("a")
	assert.False(t, ok)
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	for i, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Insert(id, Entity{Index: uint32(i), Generation: 1}))
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.IDs())

	r.Clear()
	assert.Equal(t, 0, r.Len())
}
