// Package events names the scene lifecycle events published on the bus and
// their payloads.
package events

import (
	"github.com/google/uuid"
	"github.com/zeusync/livescene/internal/core/models"
)

const (
	EntitySpawned     = "entity.spawned"
	EntityDespawned   = "entity.despawned"
	EntityPatched     = "entity.patched"
	EntitySpawnFailed = "entity.spawn_failed"

	SceneApplied    = "scene.applied"
	SceneLoadFailed = "scene.load_failed"
)

// EntityChange is the payload of every entity.* event. Err is only set for
// entity.spawn_failed; Components lists the patched kinds for entity.patched.
type EntityChange struct {
	ID         string
	Entity     models.Entity
	Components []string
	Err        error
}

// SceneChange is the payload of scene.applied and scene.load_failed.
type SceneChange struct {
	Name      string
	Path      string
	LoadID    uuid.UUID
	Spawned   int
	Despawned int
	Patched   int
	Failed    int
	Err       error
}
