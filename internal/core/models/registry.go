package models

import (
	"fmt"
	"sort"
)

// Registry maps document ids to live handles in both directions. It is owned
// by one scene world and torn down with it.
type Registry struct {
	byID     map[string]Entity
	byHandle map[Entity]string
}

func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]Entity),
		byHandle: make(map[Entity]string),
	}
}

// Insert records id ⇄ e. Colliding ids are rejected, never renamed.
func (r *Registry) Insert(id string, e Entity) error {
	if prev, ok := r.byID[id]; ok {
		return fmt.Errorf("register %q (held by %s): %w", id, prev, ErrDuplicateID)
	}
	if prev, ok := r.byHandle[e]; ok {
		return fmt.Errorf("register %s as %q (already %q): %w", e, id, prev, ErrHandleRegistered)
	}
	r.byID[id] = e
	r.byHandle[e] = id
	return nil
}

// Remove drops the entry for id and returns the handle it held.
func (r *Registry) Remove(id string) (Entity, bool) {
	e, ok := r.byID[id]
	if !ok {
		return NilEntity, false
	}
	delete(r.byID, id)
	delete(r.byHandle, e)
	return e, true
}

func (r *Registry) Handle(id string) (Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

func (r *Registry) ID(e Entity) (string, bool) {
	id, ok := r.byHandle[e]
	return id, ok
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) Len() int { return len(r.byID) }

// IDs returns the registered ids sorted.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Clear() {
	clear(r.byID)
	clear(r.byHandle)
}
