// Package world is the live scene: the entity store, the id registry and the
// document they were built from, kept in step across reloads.
package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/zeusync/livescene/internal/config"
	"github.com/zeusync/livescene/internal/core/assets"
	"github.com/zeusync/livescene/internal/core/components"
	"github.com/zeusync/livescene/internal/core/events"
	"github.com/zeusync/livescene/internal/core/events/bus"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/reconcile"
	"github.com/zeusync/livescene/internal/core/scene"
	"github.com/zeusync/livescene/internal/core/spawn"
	"github.com/zeusync/livescene/internal/core/systems"
	"github.com/zeusync/livescene/internal/core/systems/transform"
)

// World is not safe for concurrent use. Everything except Commands must be
// called from the goroutine that drives Tick.
type World struct {
	store      *models.Store
	registry   *models.Registry
	spawner    *spawn.Spawner
	reconciler *reconcile.Reconciler
	schedule   *systems.Schedule
	commands   *CommandQueue
	bus        bus.EventBus
	logger     log.Log
	caches     assets.Caches

	resolve  scene.ResolveMode
	headless bool
	current  *scene.Document
	path     string
	loadID   uuid.UUID
	frame    uint64
	torn     bool
}

// New builds an empty world. eventBus may be nil.
func New(cfg *config.Config, caches assets.Caches, logger log.Log, eventBus bus.EventBus) *World {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = log.OrNop(logger)

	var opts []spawn.Option
	if cfg.Spawn.Headless {
		opts = append(opts, spawn.WithHeadless())
	}
	if cfg.Spawn.ExclusiveCameraLight {
		opts = append(opts, spawn.WithExclusiveCameraLight())
	}

	store := models.NewStore()
	registry := models.NewRegistry()
	spawner := spawn.New(store, caches, logger, opts...)

	return &World{
		store:      store,
		registry:   registry,
		spawner:    spawner,
		reconciler: reconcile.New(store, registry, spawner, eventBus, logger),
		schedule:   systems.NewSchedule(transform.NewPropagator(cfg.HierarchyMode())),
		commands:   &CommandQueue{},
		bus:        eventBus,
		logger:     logger.With(log.String("component", "world")),
		caches:     caches,
		resolve:    cfg.ResolveMode(),
		headless:   cfg.Spawn.Headless,
	}
}

// LoadFile reads, parses and resolves path, then applies it. Any failure
// before reconciliation leaves the live world and the current document as
// they were.
func (w *World) LoadFile(path string) (reconcile.Report, error) {
	if w.torn {
		return reconcile.Report{}, ErrTornDown
	}
	doc, err := scene.Load(path, scene.WithMode(w.resolve))
	if err != nil {
		w.logger.Error("Scene load failed, keeping current scene",
			log.String("path", path),
			log.Error(err),
		)
		w.publish(events.SceneLoadFailed, events.SceneChange{Path: path, LoadID: w.loadID, Err: err})
		return reconcile.Report{}, err
	}
	report := w.apply(doc, path)
	return report, nil
}

// Apply flattens doc and reconciles the world against it. doc itself is
// not retained or modified.
func (w *World) Apply(doc *scene.Document) (reconcile.Report, error) {
	if w.torn {
		return reconcile.Report{}, ErrTornDown
	}
	if doc == nil {
		doc = &scene.Document{Settings: scene.DefaultSettings()}
	}
	flat, err := scene.Flatten(doc, scene.WithMode(w.resolve))
	if err != nil {
		return reconcile.Report{}, err
	}
	return w.apply(flat, w.path), nil
}

func (w *World) apply(doc *scene.Document, path string) reconcile.Report {
	if !w.headless {
		warm := assets.Warm(context.Background(), w.caches, doc, runtime.GOMAXPROCS(0))
		w.logger.Debug("Assets warmed",
			log.Int("requested", warm.Requested),
			log.Int("failed", warm.Failed),
		)
	}
	report := w.reconciler.Reconcile(w.current, doc)
	w.current = doc
	w.path = path
	w.loadID = uuid.New()

	w.logger.Info("Scene applied",
		log.String("scene", doc.Name),
		log.String("load_id", w.loadID.String()),
		log.Int("spawned", len(report.Spawned)),
		log.Int("despawned", len(report.Despawned)),
		log.Int("patched", len(report.Patched)),
		log.Int("failed", len(report.Failed)),
	)
	w.publish(events.SceneApplied, events.SceneChange{
		Name:      doc.Name,
		Path:      path,
		LoadID:    w.loadID,
		Spawned:   len(report.Spawned),
		Despawned: len(report.Despawned),
		Patched:   len(report.Patched),
		Failed:    len(report.Failed),
	})
	return report
}

// Tick applies queued commands, then runs the systems once.
func (w *World) Tick() error {
	if w.torn {
		return ErrTornDown
	}
	w.frame++
	w.flush()
	return w.schedule.Update(w.store)
}

func (w *World) flush() {
	b := w.commands.drain()
	for _, id := range b.destroys {
		if !w.DestroyRuntime(id) {
			w.logger.Debug("Destroy for unknown entity", log.String("entity", id))
		}
	}
	for _, cmd := range b.spawns {
		if _, err := w.SpawnRuntime(cmd); err != nil {
			w.logger.Warn("Runtime spawn failed", log.String("entity", cmd.ID), log.Error(err))
		}
	}
	for _, u := range b.scales {
		if err := w.setScale(u.id, u.scale); err != nil {
			w.logger.Debug("Scale update skipped", log.String("entity", u.id), log.Error(err))
		}
	}
	for _, u := range b.visibility {
		if err := w.setVisible(u.id, u.visible); err != nil {
			w.logger.Debug("Visibility update skipped", log.String("entity", u.id), log.Error(err))
		}
	}
	if b.load != "" {
		// Failure is logged and published by LoadFile.
		_, _ = w.LoadFile(b.load)
	}
}

// SpawnRuntime adds an entity that no scene document declares. A zero Scale
// means unit scale. Reloads never despawn or patch runtime entities, even
// when a document declares the same id.
func (w *World) SpawnRuntime(cmd SpawnCommand) (models.Entity, error) {
	if w.registry.Has(cmd.ID) {
		return models.NilEntity, fmt.Errorf("runtime spawn %q: %w", cmd.ID, models.ErrDuplicateID)
	}
	scale := cmd.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	def := scene.EntityDefinition{
		ID: cmd.ID,
		Components: scene.ComponentMap{
			Transform: &scene.TransformDef{Position: cmd.Position, Scale: scale},
		},
	}
	if cmd.Mesh != "" {
		mr := scene.DefaultMeshRenderer()
		mr.Mesh, mr.Material = cmd.Mesh, cmd.Material
		def.Components.MeshRenderer = &mr
	}

	e, err := w.spawner.Spawn(def)
	if err != nil {
		return models.NilEntity, err
	}
	if err = w.registry.Insert(cmd.ID, e); err != nil {
		_ = w.store.Despawn(e)
		return models.NilEntity, err
	}
	w.publish(events.EntitySpawned, events.EntityChange{ID: cmd.ID, Entity: e})
	return e, nil
}

// DestroyRuntime removes the entity registered under id, runtime or not.
func (w *World) DestroyRuntime(id string) bool {
	e, ok := w.registry.Remove(id)
	if !ok {
		return false
	}
	_ = w.store.Despawn(e)
	w.publish(events.EntityDespawned, events.EntityChange{ID: id, Entity: e})
	return true
}

// SetParent attaches child under parent in the transform hierarchy.
func (w *World) SetParent(child, parent string) error {
	tr, err := w.transform(child)
	if err != nil {
		return err
	}
	p, ok := w.registry.Handle(parent)
	if !ok {
		return fmt.Errorf("parent %q: %w", parent, ErrUnknownEntity)
	}
	tr.Parent = p
	tr.Dirty = true
	return nil
}

func (w *World) ClearParent(child string) error {
	tr, err := w.transform(child)
	if err != nil {
		return err
	}
	tr.Parent = models.NilEntity
	tr.Dirty = true
	return nil
}

func (w *World) setScale(id string, scale mgl32.Vec3) error {
	tr, err := w.transform(id)
	if err != nil {
		return err
	}
	tr.Scale = scale
	tr.Dirty = true
	return nil
}

func (w *World) setVisible(id string, visible bool) error {
	e, ok := w.registry.Handle(id)
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrUnknownEntity)
	}
	if !visible {
		return w.store.Insert(e, &components.Hidden{})
	}
	err := w.store.Remove(e, components.HiddenID)
	if errors.Is(err, models.ErrComponentNotFound) {
		return nil
	}
	return err
}

func (w *World) transform(id string) (*components.Transform, error) {
	e, ok := w.registry.Handle(id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownEntity)
	}
	tr, err := models.Get[*components.Transform](w.store, e)
	if err != nil {
		return nil, fmt.Errorf("%q: %w: %w", id, ErrNoTransform, err)
	}
	return tr, nil
}

func (w *World) Handle(id string) (models.Entity, bool) {
	return w.registry.Handle(id)
}

func (w *World) ID(e models.Entity) (string, bool) {
	return w.registry.ID(e)
}

// Store exposes the components for read access by renderers and tools.
func (w *World) Store() *models.Store { return w.store }

// Current is the last applied document, nil before the first load.
func (w *World) Current() *scene.Document { return w.current }

// Path is the file the current document was loaded from.
func (w *World) Path() string { return w.path }

func (w *World) LoadID() uuid.UUID { return w.loadID }

func (w *World) Settings() scene.Settings {
	if w.current == nil {
		return scene.DefaultSettings()
	}
	return w.current.Settings
}

func (w *World) Frame() uint64 { return w.frame }

func (w *World) Commands() *CommandQueue { return w.commands }

func (w *World) Schedule() *systems.Schedule { return w.schedule }

// Teardown drops every entity and the current document. The world cannot
// be used afterwards.
func (w *World) Teardown() {
	if w.torn {
		return
	}
	w.store.Clear()
	w.registry.Clear()
	w.reconciler.Reset()
	w.commands.clear()
	w.current = nil
	w.torn = true
	w.logger.Info("World torn down", log.Uint64("frames", w.frame))
}

func (w *World) publish(typ string, data any) {
	if w.bus == nil {
		return
	}
	if err := w.bus.Publish(bus.NewEvent(typ, "world", data, nil)); err != nil {
		w.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}
