package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/livescene/internal/core/models"
)

type stubSystem struct {
	name  string
	err   error
	calls *[]string
}

func (s stubSystem) Name() string { return s.name }

func (s stubSystem) Update(*models.Store) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func TestScheduleRunsInOrder(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	s := NewSchedule(
		stubSystem{name: "first", calls: &calls},
		stubSystem{name: "broken", err: boom, calls: &calls},
		stubSystem{name: "last", calls: &calls},
	)

	err := s.Update(models.NewStore())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "broken", "last"}, calls)
	assert.Equal(t, []string{"first", "broken", "last"}, s.Order())

	m, ok := s.Metrics("broken")
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.Runs)
	assert.Equal(t, uint64(1), m.Errors)
}

func TestScheduleDisable(t *testing.T) {
	var calls []string
	s := NewSchedule(stubSystem{name: "a", calls: &calls})
	require.NoError(t, s.SetEnabled("a", false))
	require.NoError(t, s.Update(models.NewStore()))
	assert.Empty(t, calls)

	assert.ErrorIs(t, s.SetEnabled("missing", true), ErrSystemNotFound)
	assert.ErrorIs(t, s.Register(stubSystem{name: "a", calls: &calls}), ErrSystemExists)
}
