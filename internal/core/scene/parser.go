package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a scene document and applies schema defaults. It does not
// resolve inheritance; see Resolve and Load.
func Parse(data []byte) (*Document, error) {
	doc := &Document{Settings: DefaultSettings()}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, parseErrorf("empty document")
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadFile reads and parses the document at path without resolving inheritance.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return Parse(data)
}

func (d *Document) validate() error {
	if d.Name == "" {
		return parseErrorf("missing field 'name'")
	}
	seen := make(map[string]int, len(d.Entities))
	for i := range d.Entities {
		e := &d.Entities[i]
		if e.ID == "" {
			return parseErrorf("entity #%d: missing field 'id'", i)
		}
		if prev, ok := seen[e.ID]; ok {
			return fmt.Errorf("%w: %w: %q declared at #%d and #%d", ErrParse, ErrDuplicateID, e.ID, prev, i)
		}
		seen[e.ID] = i

		c := &e.Components
		if mr := c.MeshRenderer; mr != nil {
			if mr.Mesh == "" {
				return parseErrorf("entity %q: mesh_renderer: missing field 'mesh'", e.ID)
			}
			if mr.Material == "" {
				return parseErrorf("entity %q: mesh_renderer: missing field 'material'", e.ID)
			}
		}
		if gs := c.GaussianSplat; gs != nil && gs.Source == "" {
			return parseErrorf("entity %q: gaussian_splat: missing field 'source'", e.ID)
		}
	}
	return nil
}

// UnmarshalYAML splits the components mapping into typed slots and the
// ordered bag of unrecognised keys.
func (c *ComponentMap) UnmarshalYAML(n *yaml.Node) error {
	*c = ComponentMap{}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: components must be a mapping", n.Line)
	}

	seen := make(map[string]struct{}, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		name := key.Value
		if _, dup := seen[name]; dup {
			return fmt.Errorf("line %d: component %q declared twice", key.Line, name)
		}
		seen[name] = struct{}{}

		var err error
		switch name {
		case "transform":
			c.Transform, err = decodeSlot[TransformDef](value, DefaultTransform())
		case "mesh_renderer":
			c.MeshRenderer, err = decodeSlot[MeshRendererDef](value, DefaultMeshRenderer())
		case "camera":
			c.Camera, err = decodeSlot[CameraDef](value, DefaultCamera())
		case "point_light":
			c.PointLight, err = decodeSlot[PointLightDef](value, DefaultPointLight())
		case "gaussian_splat":
			c.GaussianSplat, err = decodeSlot[GaussianSplatDef](value, GaussianSplatDef{})
		default:
			c.Extra.Set(name, cloneNode(value))
		}
		if err != nil {
			return fmt.Errorf("component %q: %w", name, err)
		}
	}
	return nil
}

// decodeSlot decodes a declared slot. A bare key ("camera:") declares the slot
// with all defaults.
func decodeSlot[T any](n *yaml.Node, defaults T) (*T, error) {
	v := defaults
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return &v, nil
	}
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
