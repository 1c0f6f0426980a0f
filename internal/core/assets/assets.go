// Package assets defines the mesh, material and splat caches the spawner
// resolves paths through, along with file backed implementations.
package assets

// Handles are 1-based; the zero value never refers to a loaded asset.
type (
	MeshHandle     uint32
	MaterialHandle uint32
	SplatHandle    uint32
)

func (h MeshHandle) IsValid() bool     { return h != 0 }
func (h MaterialHandle) IsValid() bool { return h != 0 }
func (h SplatHandle) IsValid() bool    { return h != 0 }

// MeshCache memoizes meshes by path. GetOrLoad may block on IO.
type MeshCache interface {
	GetOrLoad(path string) (MeshHandle, error)
}

type MaterialCache interface {
	GetOrLoad(path string) (MaterialHandle, error)
}

type SplatCache interface {
	GetOrLoad(path string) (SplatHandle, error)
}

// Caches bundles the collaborators handed to the spawner. Splats may be nil.
type Caches struct {
	Meshes    MeshCache
	Materials MaterialCache
	Splats    SplatCache
}
