// Package models is the live entity store: generation-tagged entity handles,
// sparse per-type component columns and the string id registry.
package models

import "fmt"

// ComponentID identifies a component type inside the store.
type ComponentID uint32

// Component is a value attached to an entity. TypeID must not dereference its
// receiver: the store calls it on nil pointers to find a type's column.
type Component interface {
	TypeID() ComponentID
}

// Entity is a handle into the store. A handle whose Generation no longer
// matches its slot refers to a despawned entity and resolves to nothing.
type Entity struct {
	Index      uint32
	Generation uint32
}

// NilEntity is never returned by Spawn; generations start at 1.
var NilEntity = Entity{}

func (e Entity) IsNil() bool { return e.Generation == 0 }

func (e Entity) String() string {
	if e.IsNil() {
		return "entity(nil)"
	}
	return fmt.Sprintf("entity(%d:%d)", e.Index, e.Generation)
}
