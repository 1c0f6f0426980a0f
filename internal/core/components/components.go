// Package components defines the live components the spawner attaches to
// entities, and the transform math they share.
package components

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/livescene/internal/core/assets"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/scene"
)

const (
	IdentityID models.ComponentID = iota + 1
	TagsID
	TransformID
	MeshRendererID
	CameraID
	PointLightID
	GaussianSplatID
	HiddenID
)

// Identity carries the document id an entity was spawned from.
type Identity struct {
	ID string
}

func (*Identity) TypeID() models.ComponentID { return IdentityID }

type Tags struct {
	Values []string
}

func (*Tags) TypeID() models.ComponentID { return TagsID }

func NewTags(values []string) *Tags {
	return &Tags{Values: slices.Clone(values)}
}

func (t *Tags) Has(tag string) bool {
	return slices.Contains(t.Values, tag)
}

type MeshRenderer struct {
	Mesh           assets.MeshHandle
	Material       assets.MaterialHandle
	CastShadows    bool
	ReceiveShadows bool
}

func (*MeshRenderer) TypeID() models.ComponentID { return MeshRendererID }

// DefaultAspect is used until the renderer reports a real viewport.
const DefaultAspect float32 = 16.0 / 9.0

// Camera holds the projection. FOV is in degrees.
type Camera struct {
	FOV    float32
	Near   float32
	Far    float32
	Aspect float32
	Role   string
}

func (*Camera) TypeID() models.ComponentID { return CameraID }

func NewCamera(def scene.CameraDef) *Camera {
	return &Camera{FOV: def.FOV, Near: def.Near, Far: def.Far, Aspect: DefaultAspect, Role: def.Role}
}

// Apply updates the projection parameters from def. Role and Aspect are
// left untouched.
func (c *Camera) Apply(def scene.CameraDef) {
	c.FOV = def.FOV
	c.Near = def.Near
	c.Far = def.Far
}

func (c *Camera) IsMain() bool { return c.Role == scene.CameraRoleMain }

// Projection returns the perspective matrix for the current aspect.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

type PointLight struct {
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
}

func (*PointLight) TypeID() models.ComponentID { return PointLightID }

func NewPointLight(def scene.PointLightDef) *PointLight {
	return &PointLight{Color: def.Color, Intensity: def.Intensity, Range: def.Range}
}

func (p *PointLight) Apply(def scene.PointLightDef) {
	p.Color = def.Color
	p.Intensity = def.Intensity
	p.Range = def.Range
}

type GaussianSplat struct {
	Splat  assets.SplatHandle
	Source string
}

func (*GaussianSplat) TypeID() models.ComponentID { return GaussianSplatID }

// Hidden marks an entity the renderer should skip.
type Hidden struct{}

func (*Hidden) TypeID() models.ComponentID { return HiddenID }
