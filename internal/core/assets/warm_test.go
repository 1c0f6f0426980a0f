package assets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/livescene/internal/core/observability/log"
	"github.com/zeusync/livescene/internal/core/scene"
)

func TestWarmLoadsDistinctPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.yaml", "shader: [")
	doc, err := scene.Parse([]byte(`
name: warm
entities:
  - id: a
    components:
      mesh_renderer: {mesh: "procedural:cube", material: bad.yaml}
  - id: b
    components:
      mesh_renderer: {mesh: "procedural:cube", material: m.yaml}
  - id: c
    components:
      gaussian_splat: {source: cloud.ply}
`))
	require.NoError(t, err)

	meshes := NewFileMeshCache(root, log.Nop())
	caches := Caches{
		Meshes:    meshes,
		Materials: NewFileMaterialCache(root, log.Nop()),
		Splats:    NewFileSplatCache(root, log.Nop()),
	}
	stats := Warm(context.Background(), caches, doc, 4)
	assert.Equal(t, 4, stats.Requested)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, meshes.Len())
}

func TestWarmWithoutCaches(t *testing.T) {
	doc, err := scene.Parse([]byte("name: w\nentities:\n  - id: a\n    components:\n      mesh_renderer: {mesh: m, material: n}\n"))
	require.NoError(t, err)
	assert.Equal(t, WarmStats{}, Warm(context.Background(), Caches{}, doc, 0))
}
