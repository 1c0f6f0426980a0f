package models

import (
	"fmt"
	"iter"
	"sort"
)

type slot struct {
	generation uint32
	alive      bool
}

// column is a sparse set holding every component of one type.
type column struct {
	dense  []Component
	owners []Entity
	sparse map[uint32]int
}

func newColumn() *column {
	return &column{sparse: make(map[uint32]int)}
}

func (c *column) set(e Entity, comp Component) {
	if i, ok := c.sparse[e.Index]; ok {
		c.dense[i] = comp
		c.owners[i] = e
		return
	}
	c.sparse[e.Index] = len(c.dense)
	c.dense = append(c.dense, comp)
	c.owners = append(c.owners, e)
}

func (c *column) get(index uint32) (Component, bool) {
	i, ok := c.sparse[index]
	if !ok {
		return nil, false
	}
	return c.dense[i], true
}

func (c *column) remove(index uint32) bool {
	i, ok := c.sparse[index]
	if !ok {
		return false
	}
	last := len(c.dense) - 1
	if i != last {
		c.dense[i] = c.dense[last]
		c.owners[i] = c.owners[last]
		c.sparse[c.owners[i].Index] = i
	}
	c.dense[last] = nil
	c.dense = c.dense[:last]
	c.owners = c.owners[:last]
	delete(c.sparse, index)
	return true
}

// Store is the sparse component database. It is not safe for concurrent use;
// the scene world drives it from a single goroutine.
type Store struct {
	slots   []slot
	free    []uint32
	columns map[ComponentID]*column
	live    int
}

func NewStore() *Store {
	return &Store{columns: make(map[ComponentID]*column)}
}

// Spawn allocates a handle and attaches the given components. Fresh slots are
// handed out in ascending order, freed slots are reused most recent first.
func (s *Store) Spawn(components ...Component) Entity {
	var e Entity
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		sl := &s.slots[idx]
		sl.alive = true
		e = Entity{Index: idx, Generation: sl.generation}
	} else {
		s.slots = append(s.slots, slot{generation: 1, alive: true})
		e = Entity{Index: uint32(len(s.slots) - 1), Generation: 1}
	}
	s.live++

	for _, c := range components {
		if c != nil {
			s.column(c.TypeID()).set(e, c)
		}
	}
	return e
}

// Despawn removes the entity and all of its components and invalidates the
// handle. Other entities that still reference it are left as they are.
func (s *Store) Despawn(e Entity) error {
	if !s.Contains(e) {
		return fmt.Errorf("despawn %s: %w", e, ErrEntityNotFound)
	}
	for _, col := range s.columns {
		col.remove(e.Index)
	}
	sl := &s.slots[e.Index]
	sl.alive = false
	sl.generation++
	if sl.generation == 0 {
		sl.generation = 1
	}
	s.free = append(s.free, e.Index)
	s.live--
	return nil
}

// Contains reports whether the handle refers to a live entity.
func (s *Store) Contains(e Entity) bool {
	if e.IsNil() || int(e.Index) >= len(s.slots) {
		return false
	}
	sl := s.slots[e.Index]
	return sl.alive && sl.generation == e.Generation
}

// Insert attaches or replaces a component on a live entity.
func (s *Store) Insert(e Entity, c Component) error {
	if !s.Contains(e) {
		return fmt.Errorf("insert into %s: %w", e, ErrEntityNotFound)
	}
	s.column(c.TypeID()).set(e, c)
	return nil
}

// Remove detaches one component type from a live entity.
func (s *Store) Remove(e Entity, id ComponentID) error {
	if !s.Contains(e) {
		return fmt.Errorf("remove from %s: %w", e, ErrEntityNotFound)
	}
	col, ok := s.columns[id]
	if !ok || !col.remove(e.Index) {
		return fmt.Errorf("remove component %d from %s: %w", id, e, ErrComponentNotFound)
	}
	return nil
}

func (s *Store) Has(e Entity, id ComponentID) bool {
	if !s.Contains(e) {
		return false
	}
	col, ok := s.columns[id]
	if !ok {
		return false
	}
	_, ok = col.get(e.Index)
	return ok
}

// Len returns the number of live entities.
func (s *Store) Len() int { return s.live }

// Count returns how many live entities carry the component type.
func (s *Store) Count(id ComponentID) int {
	if col, ok := s.columns[id]; ok {
		return len(col.dense)
	}
	return 0
}

// Entities returns every live handle ordered by slot index.
func (s *Store) Entities() []Entity {
	out := make([]Entity, 0, s.live)
	for i, sl := range s.slots {
		if sl.alive {
			out = append(out, Entity{Index: uint32(i), Generation: sl.generation})
		}
	}
	return out
}

// Clear drops every entity. Handles issued before Clear stay invalid.
func (s *Store) Clear() {
	for i := range s.slots {
		if s.slots[i].alive {
			s.slots[i].alive = false
			s.slots[i].generation++
			if s.slots[i].generation == 0 {
				s.slots[i].generation = 1
			}
		}
	}
	s.free = s.free[:0]
	for i := len(s.slots) - 1; i >= 0; i-- {
		s.free = append(s.free, uint32(i))
	}
	s.columns = make(map[ComponentID]*column)
	s.live = 0
}

func (s *Store) column(id ComponentID) *column {
	col, ok := s.columns[id]
	if !ok {
		col = newColumn()
		s.columns[id] = col
	}
	return col
}

// Get returns the component of type C attached to e. C is the pointer type
// stored by Spawn or Insert, so the result may be mutated in place.
func Get[C Component](s *Store, e Entity) (C, error) {
	var zero C
	if !s.Contains(e) {
		return zero, fmt.Errorf("get from %s: %w", e, ErrEntityNotFound)
	}
	col, ok := s.columns[zero.TypeID()]
	if !ok {
		return zero, fmt.Errorf("get %T from %s: %w", zero, e, ErrComponentNotFound)
	}
	c, ok := col.get(e.Index)
	if !ok {
		return zero, fmt.Errorf("get %T from %s: %w", zero, e, ErrComponentNotFound)
	}
	typed, ok := c.(C)
	if !ok {
		return zero, fmt.Errorf("get %T from %s: stored %T: %w", zero, e, c, ErrComponentNotFound)
	}
	return typed, nil
}

// All yields every (entity, component) pair of type C in slot order. The
// store must not be structurally modified while iterating.
func All[C Component](s *Store) iter.Seq2[Entity, C] {
	return func(yield func(Entity, C) bool) {
		var zero C
		col, ok := s.columns[zero.TypeID()]
		if !ok {
			return
		}
		order := make([]int, len(col.dense))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return col.owners[order[a]].Index < col.owners[order[b]].Index
		})
		for _, i := range order {
			typed, ok := col.dense[i].(C)
			if !ok {
				continue
			}
			if !yield(col.owners[i], typed) {
				return
			}
		}
	}
}
