// Package scene holds the declarative scene document: its YAML schema, the
// parser that applies schema defaults, and the resolver that flattens
// prototype ("extends") inheritance.
package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Document is one loaded scene file. A document is replaced wholesale on every
// load and is never mutated after Parse or Resolve returns it.
type Document struct {
	Name     string             `yaml:"name"`
	Settings Settings           `yaml:"settings"`
	Entities []EntityDefinition `yaml:"entities"`
}

type Settings struct {
	AmbientLight mgl32.Vec3 `yaml:"ambient_light"`
	Fog          *Fog       `yaml:"fog,omitempty"`
	Gravity      mgl32.Vec3 `yaml:"gravity"`
}

type Fog struct {
	Enabled bool       `yaml:"enabled"`
	Color   mgl32.Vec3 `yaml:"color"`
	Density float32    `yaml:"density"`
}

// EntityDefinition is a single entry of the entities list.
type EntityDefinition struct {
	ID         string       `yaml:"id"`
	Tags       []string     `yaml:"tags,omitempty"`
	Extends    string       `yaml:"extends,omitempty"`
	Components ComponentMap `yaml:"components"`
}

// ComponentMap carries the typed component slots this core understands. Nil
// means the slot was not declared. Any other key lands in Extra untouched.
type ComponentMap struct {
	Transform     *TransformDef
	MeshRenderer  *MeshRendererDef
	Camera        *CameraDef
	PointLight    *PointLightDef
	GaussianSplat *GaussianSplatDef
	Extra         Extras
}

// TransformDef is the declared transform. Rotation is Euler degrees
// [pitch, yaw, roll].
type TransformDef struct {
	Position mgl32.Vec3 `yaml:"position"`
	Rotation mgl32.Vec3 `yaml:"rotation"`
	Scale    mgl32.Vec3 `yaml:"scale"`
}

type MeshRendererDef struct {
	Mesh           string `yaml:"mesh"`
	Material       string `yaml:"material"`
	CastShadows    bool   `yaml:"cast_shadows"`
	ReceiveShadows bool   `yaml:"receive_shadows"`
}

type CameraDef struct {
	FOV  float32 `yaml:"fov"`
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
	Role string  `yaml:"role"`
}

type PointLightDef struct {
	Color     mgl32.Vec3 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
	Range     float32    `yaml:"range"`
}

type GaussianSplatDef struct {
	Source string `yaml:"source"`
}

// CameraRoleMain is the role of the camera the renderer draws through.
const CameraRoleMain = "main"

func DefaultSettings() Settings {
	return Settings{
		AmbientLight: mgl32.Vec3{0.1, 0.1, 0.1},
		Gravity:      mgl32.Vec3{0, -9.81, 0},
	}
}

func DefaultTransform() TransformDef {
	return TransformDef{Scale: mgl32.Vec3{1, 1, 1}}
}

func DefaultMeshRenderer() MeshRendererDef {
	return MeshRendererDef{CastShadows: true, ReceiveShadows: true}
}

func DefaultCamera() CameraDef {
	return CameraDef{FOV: 75, Near: 0.1, Far: 100, Role: CameraRoleMain}
}

func DefaultPointLight() PointLightDef {
	return PointLightDef{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, Range: 10}
}

// Each slot decodes over its defaults so absent keys keep the schema value.

func (t *TransformDef) UnmarshalYAML(n *yaml.Node) error {
	type plain TransformDef
	v := plain(DefaultTransform())
	if err := n.Decode(&v); err != nil {
		return err
	}
	*t = TransformDef(v)
	return nil
}

func (m *MeshRendererDef) UnmarshalYAML(n *yaml.Node) error {
	type plain MeshRendererDef
	v := plain(DefaultMeshRenderer())
	if err := n.Decode(&v); err != nil {
		return err
	}
	*m = MeshRendererDef(v)
	return nil
}

func (c *CameraDef) UnmarshalYAML(n *yaml.Node) error {
	type plain CameraDef
	v := plain(DefaultCamera())
	if err := n.Decode(&v); err != nil {
		return err
	}
	*c = CameraDef(v)
	return nil
}

func (p *PointLightDef) UnmarshalYAML(n *yaml.Node) error {
	type plain PointLightDef
	v := plain(DefaultPointLight())
	if err := n.Decode(&v); err != nil {
		return err
	}
	*p = PointLightDef(v)
	return nil
}

// Lookup returns the definition with the given id.
func (d *Document) Lookup(id string) (*EntityDefinition, bool) {
	for i := range d.Entities {
		if d.Entities[i].ID == id {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// IDs returns entity ids in declaration order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Entities))
	for i := range d.Entities {
		ids[i] = d.Entities[i].ID
	}
	return ids
}

func (d *Document) Clone() *Document {
	out := &Document{
		Name:     d.Name,
		Settings: d.Settings,
		Entities: make([]EntityDefinition, len(d.Entities)),
	}
	out.Settings.Fog = clonePtr(d.Settings.Fog)
	for i := range d.Entities {
		out.Entities[i] = d.Entities[i].Clone()
	}
	return out
}

// Clone returns a deep copy; no slot, tag slice or extra node is shared.
func (e EntityDefinition) Clone() EntityDefinition {
	return EntityDefinition{
		ID:         e.ID,
		Tags:       slices.Clone(e.Tags),
		Extends:    e.Extends,
		Components: e.Components.Clone(),
	}
}

func (c ComponentMap) Clone() ComponentMap {
	return ComponentMap{
		Transform:     clonePtr(c.Transform),
		MeshRenderer:  clonePtr(c.MeshRenderer),
		Camera:        clonePtr(c.Camera),
		PointLight:    clonePtr(c.PointLight),
		GaussianSplat: clonePtr(c.GaussianSplat),
		Extra:         c.Extra.Clone(),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
