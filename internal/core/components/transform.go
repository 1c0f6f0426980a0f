package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/livescene/internal/core/models"
	"github.com/zeusync/livescene/internal/core/scene"
)

// Transform is the local placement of an entity plus its cached world matrix.
// Parent is models.NilEntity for roots; a parent handle that went stale is
// treated as "no update this tick" by the propagator.
type Transform struct {
	Position    mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	WorldMatrix mgl32.Mat4
	Parent      models.Entity
	Dirty       bool
}

func (*Transform) TypeID() models.ComponentID { return TransformID }

// NewTransform builds a dirty root transform from its declaration.
func NewTransform(def scene.TransformDef) *Transform {
	t := &Transform{
		Position:    def.Position,
		Rotation:    EulerDegreesToQuat(def.Rotation),
		Scale:       def.Scale,
		WorldMatrix: mgl32.Ident4(),
		Dirty:       true,
	}
	return t
}

// Apply overwrites the local fields from def and marks the transform dirty.
// Parent and the cached world matrix are kept.
func (t *Transform) Apply(def scene.TransformDef) {
	t.Position = def.Position
	t.Rotation = EulerDegreesToQuat(def.Rotation)
	t.Scale = def.Scale
	t.Dirty = true
}

func (t *Transform) HasParent() bool { return !t.Parent.IsNil() }

// LocalMatrix composes translate * rotate * scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	sc := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(t.Rotation.Normalize().Mat4()).Mul4(sc)
}

// WorldPosition is the translation column of the world matrix.
func (t *Transform) WorldPosition() mgl32.Vec3 {
	return t.WorldMatrix.Col(3).Vec3()
}

// EulerDegreesToQuat converts [pitch, yaw, roll] in degrees to a rotation
// applied yaw first, then pitch, then roll.
func EulerDegreesToQuat(deg mgl32.Vec3) mgl32.Quat {
	pitch := mgl32.DegToRad(deg.X())
	yaw := mgl32.DegToRad(deg.Y())
	roll := mgl32.DegToRad(deg.Z())
	return mgl32.AnglesToQuat(yaw, pitch, roll, mgl32.YXZ)
}
