// Package reconcile applies the difference between two scene documents to a
// live store without restarting it.
package reconcile

import (
	"github.com/zeusync/livescene/internal/core/components"
	"github.com/zeusync/livescene/internal/core/events"
	"github.com/zeusync/livescene/internal/core/events/bus"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/scene"
	"github.com/zeusync/livescene/internal/core/spawn"
)

// Report lists the ids touched by one pass, each in processing order.
type Report struct {
	Spawned   []string
	Despawned []string
	Patched   []string
	Failed    []string
}

func (r Report) Empty() bool {
	return len(r.Spawned)+len(r.Despawned)+len(r.Patched)+len(r.Failed) == 0
}

// Reconciler only despawns or patches entities it spawned itself. Ids held in
// the registry by anyone else are left alone.
type Reconciler struct {
	store    *models.Store
	registry *models.Registry
	spawner  *spawn.Spawner
	bus      bus.EventBus
	logger   log.Log

	owned map[string]models.Entity
}

// New wires a reconciler. eventBus may be nil.
func New(store *models.Store, registry *models.Registry, spawner *spawn.Spawner, eventBus bus.EventBus, logger log.Log) *Reconciler {
	return &Reconciler{
		store:    store,
		registry: registry,
		spawner:  spawner,
		bus:      eventBus,
		logger:   log.OrNop(logger).With(log.String("component", "reconciler")),
		owned:    make(map[string]models.Entity),
	}
}

// Owns reports whether id is a live entity spawned from a document.
func (r *Reconciler) Owns(id string) bool {
	e, ok := r.owned[id]
	return ok && r.store.Contains(e)
}

// Reset forgets every owned entity. The store and registry are not touched.
func (r *Reconciler) Reset() { clear(r.owned) }

// Reconcile brings the store from prev to next. prev nil means the store
// holds nothing from an earlier document and every entity of next is spawned.
// Asset failures skip the entity and are listed in Report.Failed.
func (r *Reconciler) Reconcile(prev, next *scene.Document) Report {
	var report Report
	if next == nil {
		next = &scene.Document{}
	}
	if prev == nil {
		for i := range next.Entities {
			r.spawn(next.Entities[i], &report)
		}
		return report
	}

	nextIDs := make(map[string]struct{}, len(next.Entities))
	for i := range next.Entities {
		nextIDs[next.Entities[i].ID] = struct{}{}
	}
	prevIDs := make(map[string]struct{}, len(prev.Entities))
	for i := range prev.Entities {
		prevIDs[prev.Entities[i].ID] = struct{}{}
	}

	for i := range prev.Entities {
		id := prev.Entities[i].ID
		if _, ok := nextIDs[id]; !ok {
			r.despawn(id, &report)
		}
	}

	for i := range next.Entities {
		def := next.Entities[i]
		if _, ok := prevIDs[def.ID]; !ok {
			r.spawn(def, &report)
			continue
		}
		e, ok := r.owned[def.ID]
		if !ok || !r.store.Contains(e) {
			// An earlier spawn of this id failed or was destroyed; retry it.
			r.release(def.ID)
			r.spawn(def, &report)
			continue
		}
		r.patch(def, e, &report)
	}
	return report
}

func (r *Reconciler) spawn(def scene.EntityDefinition, report *Report) {
	if r.registry.Has(def.ID) {
		r.logger.Warn("Entity id already live, not spawning", log.String("entity", def.ID))
		report.Failed = append(report.Failed, def.ID)
		return
	}

	e, err := r.spawner.Spawn(def)
	if err != nil {
		r.logger.Warn("Entity spawn failed", log.String("entity", def.ID), log.Error(err))
		report.Failed = append(report.Failed, def.ID)
		r.publish(events.EntitySpawnFailed, events.EntityChange{ID: def.ID, Err: err})
		return
	}
	if err = r.registry.Insert(def.ID, e); err != nil {
		_ = r.store.Despawn(e)
		r.logger.Warn("Entity registration failed", log.String("entity", def.ID), log.Error(err))
		report.Failed = append(report.Failed, def.ID)
		return
	}

	r.owned[def.ID] = e
	r.logger.Info("Spawned entity", log.String("entity", def.ID))
	report.Spawned = append(report.Spawned, def.ID)
	r.publish(events.EntitySpawned, events.EntityChange{ID: def.ID, Entity: e})
}

func (r *Reconciler) despawn(id string, report *Report) {
	e, ok := r.release(id)
	if !ok {
		// Never spawned, or the id now belongs to a runtime entity.
		return
	}
	if err := r.store.Despawn(e); err != nil {
		r.logger.Debug("Entity already gone from store", log.String("entity", id), log.Error(err))
		return
	}
	r.logger.Info("Despawned entity", log.String("entity", id))
	report.Despawned = append(report.Despawned, id)
	r.publish(events.EntityDespawned, events.EntityChange{ID: id, Entity: e})
}

// release drops ownership of id and its registry entry, if the registry
// still maps id to the owned handle.
func (r *Reconciler) release(id string) (models.Entity, bool) {
	e, ok := r.owned[id]
	if !ok {
		return models.NilEntity, false
	}
	delete(r.owned, id)
	if cur, held := r.registry.Handle(id); held && cur == e {
		r.registry.Remove(id)
		return e, true
	}
	return models.NilEntity, false
}

// patch updates transform, camera and point light in place. Mesh, material,
// splat and tag changes are not picked up by a reload.
func (r *Reconciler) patch(def scene.EntityDefinition, e models.Entity, report *Report) {
	var touched []string

	if def.Components.Transform != nil {
		if tr, err := models.Get[*components.Transform](r.store, e); err == nil {
			tr.Apply(*def.Components.Transform)
			touched = append(touched, "transform")
		} else {
			r.skip(def.ID, "transform", err)
		}
	}
	if def.Components.Camera != nil {
		if cam, err := models.Get[*components.Camera](r.store, e); err == nil {
			cam.Apply(*def.Components.Camera)
			touched = append(touched, "camera")
		} else {
			r.skip(def.ID, "camera", err)
		}
	}
	if def.Components.PointLight != nil {
		if pl, err := models.Get[*components.PointLight](r.store, e); err == nil {
			pl.Apply(*def.Components.PointLight)
			touched = append(touched, "point_light")
		} else {
			r.skip(def.ID, "point_light", err)
		}
	}

	if len(touched) == 0 {
		return
	}
	report.Patched = append(report.Patched, def.ID)
	r.publish(events.EntityPatched, events.EntityChange{ID: def.ID, Entity: e, Components: touched})
}

func (r *Reconciler) skip(id, kind string, err error) {
	r.logger.Debug("Patch skipped, component not on entity",
		log.String("entity", id),
		log.String("kind", kind),
		log.Error(err),
	)
}

func (r *Reconciler) publish(typ string, change events.EntityChange) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(bus.NewEvent(typ, "reconciler", change, nil)); err != nil {
		r.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}
