package reconcile

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/livescene/internal/core/assets"
	"github.com/zeusync/livescene/internal/core/components"
	"github.com/zeusync/livescene/internal/core/events"
	"github.com/zeusync/livescene/internal/core/events/bus"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/scene"
	"github.com/zeusync/livescene/internal/core/spawn"
)

// flakyMeshes fails every path listed in broken.
type flakyMeshes struct {
	inner  assets.MeshCache
	broken map[string]bool
}

func (f *flakyMeshes) GetOrLoad(path string) (assets.MeshHandle, error) {
	if f.broken[path] {
		return 0, errors.New("gpu upload failed")
	}
	return f.inner.GetOrLoad(path)
}

type fixture struct {
	store    *models.Store
	registry *models.Registry
	meshes   *flakyMeshes
	bus      bus.EventBus
	rec      *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		store:    models.NewStore(),
		registry: models.NewRegistry(),
		meshes:   &flakyMeshes{inner: assets.NewFileMeshCache(root, log.Nop()), broken: map[string]bool{}},
		bus:      bus.New(),
	}
	caches := assets.Caches{Meshes: f.meshes, Materials: assets.NewFileMaterialCache(root, log.Nop())}
	sp := spawn.New(f.store, caches, log.Nop())
	f.rec = New(f.store, f.registry, sp, f.bus, log.Nop())
	return f
}

func parse(t *testing.T, src string) *scene.Document {
	t.Helper()
	doc, err := scene.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func (f *fixture) handle(t *testing.T, id string) models.Entity {
	t.Helper()
	e, ok := f.registry.Handle(id)
	require.True(t, ok, "no handle for %q", id)
	require.True(t, f.store.Contains(e))
	return e
}

const docAB = `
name: ab
entities:
  - id: a
  - id: b
    components:
      transform: {position: [1, 0, 0]}
      camera: {fov: 60}
`

const docBC = `
name: bc
entities:
  - id: b
    components:
      transform: {position: [2, 0, 0]}
      camera: {fov: 90, role: minimap}
  - id: c
`

func TestInitialLoadSpawnsAll(t *testing.T) {
	f := newFixture(t)
	report := f.rec.Reconcile(nil, parse(t, docAB))

	assert.Equal(t, []string{"a", "b"}, report.Spawned)
	assert.Equal(t, 2, f.store.Len())
	assert.Equal(t, 2, f.registry.Len())
}

func TestReconcileDiff(t *testing.T) {
	f := newFixture(t)
	prev := parse(t, docAB)
	f.rec.Reconcile(nil, prev)
	oldA := f.handle(t, "a")
	oldB := f.handle(t, "b")

	report := f.rec.Reconcile(prev, parse(t, docBC))
	assert.Equal(t, []string{"a"}, report.Despawned)
	assert.Equal(t, []string{"c"}, report.Spawned)
	assert.Equal(t, []string{"b"}, report.Patched)
	assert.Empty(t, report.Failed)

	assert.False(t, f.registry.Has("a"))
	assert.False(t, f.store.Contains(oldA))
	assert.Equal(t, oldB, f.handle(t, "b"), "common entity keeps its handle")
	f.handle(t, "c")
	assert.Equal(t, 2, f.store.Len())

	tr, err := models.Get[*components.Transform](f.store, oldB)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, tr.Position)
	assert.True(t, tr.Dirty)

	cam, err := models.Get[*components.Camera](f.store, oldB)
	require.NoError(t, err)
	assert.InDelta(t, 90, cam.FOV, 1e-6)
	assert.Equal(t, "main", cam.Role, "role is not patched")
}

func TestReconcileToEmptyAndBack(t *testing.T) {
	f := newFixture(t)
	doc := parse(t, docAB)
	empty := parse(t, "name: empty\nentities: []\n")

	f.rec.Reconcile(nil, doc)
	report := f.rec.Reconcile(doc, empty)
	assert.Equal(t, []string{"a", "b"}, report.Despawned)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 0, f.registry.Len())

	report = f.rec.Reconcile(empty, doc)
	assert.Equal(t, []string{"a", "b"}, report.Spawned)
	assert.Equal(t, 2, f.store.Len())
}

func TestReconcileUnchangedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	doc := parse(t, docAB)
	f.rec.Reconcile(nil, doc)
	b := f.handle(t, "b")

	report := f.rec.Reconcile(doc, doc)
	assert.Empty(t, report.Spawned)
	assert.Empty(t, report.Despawned)
	assert.Equal(t, b, f.handle(t, "b"))
	assert.Equal(t, 2, f.store.Len())
}

func TestPatchMissingComponentIsNoop(t *testing.T) {
	f := newFixture(t)
	prev := parse(t, "name: p\nentities:\n  - id: lamp\n")
	f.rec.Reconcile(nil, prev)
	lamp := f.handle(t, "lamp")

	next := parse(t, `
name: p
entities:
  - id: lamp
    components:
      point_light: {intensity: 3}
`)
	report := f.rec.Reconcile(prev, next)
	assert.Empty(t, report.Patched)
	assert.False(t, f.store.Has(lamp, components.PointLightID), "reload never adds new component types")
}

func TestPatchPointLight(t *testing.T) {
	f := newFixture(t)
	prev := parse(t, "name: p\nentities:\n  - id: lamp\n    components:\n      point_light: {}\n")
	f.rec.Reconcile(nil, prev)

	next := parse(t, `
name: p
entities:
  - id: lamp
    components:
      point_light: {color: [1, 0, 0], intensity: 3, range: 2}
`)
	report := f.rec.Reconcile(prev, next)
	assert.Equal(t, []string{"lamp"}, report.Patched)

	pl, err := models.Get[*components.PointLight](f.store, f.handle(t, "lamp"))
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, pl.Color)
	assert.InDelta(t, 3, pl.Intensity, 1e-6)
	assert.InDelta(t, 2, pl.Range, 1e-6)
}

func TestSpawnFailureIsPerEntity(t *testing.T) {
	f := newFixture(t)
	f.meshes.broken["broken.gltf"] = true

	var failed []events.EntityChange
	_, err := f.bus.Subscribe(events.EntitySpawnFailed, func(e bus.Event) error {
		failed = append(failed, e.Data().(events.EntityChange))
		return nil
	})
	require.NoError(t, err)

	doc := parse(t, `
name: f
entities:
  - id: ok_before
  - id: crate
    components:
      mesh_renderer: {mesh: broken.gltf, material: m.yaml}
  - id: ok_after
    components:
      mesh_renderer: {mesh: "procedural:cube", material: m.yaml}
`)
	report := f.rec.Reconcile(nil, doc)
	assert.Equal(t, []string{"ok_before", "ok_after"}, report.Spawned)
	assert.Equal(t, []string{"crate"}, report.Failed)
	assert.False(t, f.registry.Has("crate"))
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, spawn.ErrAssetResolution)

	// Once the asset is fixed the next reload spawns it.
	delete(f.meshes.broken, "broken.gltf")
	report = f.rec.Reconcile(doc, doc)
	assert.Equal(t, []string{"crate"}, report.Spawned)
	f.handle(t, "crate")
}

func TestRemovedNeverSpawnedIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.meshes.broken["broken.gltf"] = true
	prev := parse(t, "name: f\nentities:\n  - id: crate\n    components:\n      mesh_renderer: {mesh: broken.gltf, material: m.yaml}\n")
	f.rec.Reconcile(nil, prev)

	report := f.rec.Reconcile(prev, parse(t, "name: f\nentities: []\n"))
	assert.Empty(t, report.Despawned)
	assert.True(t, report.Empty())
}

func TestEventsPublishedInOrder(t *testing.T) {
	f := newFixture(t)
	var seen []string
	_, err := f.bus.Subscribe(bus.Wildcard, func(e bus.Event) error {
		seen = append(seen, e.Type()+":"+e.Data().(events.EntityChange).ID)
		return nil
	})
	require.NoError(t, err)

	prev := parse(t, docAB)
	f.rec.Reconcile(nil, prev)
	f.rec.Reconcile(prev, parse(t, docBC))

	assert.Equal(t, []string{
		"entity.spawned:a",
		"entity.spawned:b",
		"entity.despawned:a",
		"entity.patched:b",
		"entity.spawned:c",
	}, seen)
}

func TestDanglingParentSurvivesDespawn(t *testing.T) {
	f := newFixture(t)
	prev := parse(t, docAB)
	f.rec.Reconcile(nil, prev)

	a := f.handle(t, "a")
	trB, err := models.Get[*components.Transform](f.store, f.handle(t, "b"))
	require.NoError(t, err)
	trB.Parent = a

	f.rec.Reconcile(prev, parse(t, "name: b\nentities:\n  - id: b\n"))
	assert.Equal(t, a, trB.Parent, "despawn does not rewrite other entities")
	assert.False(t, f.store.Contains(trB.Parent))
}

func TestForeignEntityIsNeverTouched(t *testing.T) {
	f := newFixture(t)
	f.meshes.broken["broken.gltf"] = true
	prev := parse(t, `
name: f
entities:
  - id: a
  - id: crate
    components:
      transform: {position: [5, 0, 0]}
      mesh_renderer: {mesh: broken.gltf, material: m.yaml}
`)
	report := f.rec.Reconcile(nil, prev)
	assert.Equal(t, []string{"crate"}, report.Failed)

	// Someone else claims the id the document failed to spawn.
	tr := components.NewTransform(scene.DefaultTransform())
	foreign := f.store.Spawn(tr)
	require.NoError(t, f.registry.Insert("crate", foreign))
	assert.False(t, f.rec.Owns("crate"))

	delete(f.meshes.broken, "broken.gltf")
	report = f.rec.Reconcile(prev, prev)
	assert.Equal(t, []string{"crate"}, report.Failed)
	assert.Empty(t, report.Patched)
	assert.Equal(t, mgl32.Vec3{}, tr.Position)

	report = f.rec.Reconcile(prev, parse(t, "name: f\nentities:\n  - id: a\n"))
	assert.Empty(t, report.Despawned)
	assert.True(t, f.store.Contains(foreign))
	assert.Equal(t, foreign, f.handle(t, "crate"))
}

func TestDestroyedEntityIsRespawned(t *testing.T) {
	f := newFixture(t)
	doc := parse(t, docAB)
	f.rec.Reconcile(nil, doc)

	a := f.handle(t, "a")
	f.registry.Remove("a")
	require.NoError(t, f.store.Despawn(a))
	assert.False(t, f.rec.Owns("a"))

	report := f.rec.Reconcile(doc, doc)
	assert.Equal(t, []string{"a"}, report.Spawned)
	assert.True(t, f.rec.Owns("a"))
	assert.NotEqual(t, a, f.handle(t, "a"))
}
