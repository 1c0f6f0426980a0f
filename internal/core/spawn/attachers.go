package spawn

import (
	"github.com/zeusync/livescene/internal/core/assets"
	"github.com/zeusync/livescene/internal/core/components"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/scene"
)

// Attacher builds the live component for one declared slot. It returns nil
// when the definition does not declare the slot.
type Attacher interface {
	Kind() string
	Build(def scene.EntityDefinition) (models.Component, error)
}

type AttacherFunc struct {
	Name string
	Fn   func(def scene.EntityDefinition) (models.Component, error)
}

func (a AttacherFunc) Kind() string { return a.Name }

func (a AttacherFunc) Build(def scene.EntityDefinition) (models.Component, error) {
	return a.Fn(def)
}

func meshRendererAttacher(caches assets.Caches) Attacher {
	return AttacherFunc{Name: "mesh_renderer", Fn: func(def scene.EntityDefinition) (models.Component, error) {
		mr := def.Components.MeshRenderer
		if mr == nil {
			return nil, nil
		}
		mesh, err := caches.Meshes.GetOrLoad(mr.Mesh)
		if err != nil {
			return nil, &AssetResolutionError{Entity: def.ID, Kind: "mesh", Path: mr.Mesh, Err: err}
		}
		mat, err := caches.Materials.GetOrLoad(mr.Material)
		if err != nil {
			return nil, &AssetResolutionError{Entity: def.ID, Kind: "material", Path: mr.Material, Err: err}
		}
		return &components.MeshRenderer{
			Mesh:           mesh,
			Material:       mat,
			CastShadows:    mr.CastShadows,
			ReceiveShadows: mr.ReceiveShadows,
		}, nil
	}}
}

func cameraAttacher() Attacher {
	return AttacherFunc{Name: "camera", Fn: func(def scene.EntityDefinition) (models.Component, error) {
		if def.Components.Camera == nil {
			return nil, nil
		}
		return components.NewCamera(*def.Components.Camera), nil
	}}
}

func pointLightAttacher(exclusive bool) Attacher {
	return AttacherFunc{Name: "point_light", Fn: func(def scene.EntityDefinition) (models.Component, error) {
		pl := def.Components.PointLight
		if pl == nil || (exclusive && def.Components.Camera != nil) {
			return nil, nil
		}
		return components.NewPointLight(*pl), nil
	}}
}

func gaussianSplatAttacher(cache assets.SplatCache) Attacher {
	return AttacherFunc{Name: "gaussian_splat", Fn: func(def scene.EntityDefinition) (models.Component, error) {
		gs := def.Components.GaussianSplat
		if gs == nil {
			return nil, nil
		}
		h, err := cache.GetOrLoad(gs.Source)
		if err != nil {
			return nil, &AssetResolutionError{Entity: def.ID, Kind: "splat", Path: gs.Source, Err: err}
		}
		return &components.GaussianSplat{Splat: h, Source: gs.Source}, nil
	}}
}
