package scene

import (
	"fmt"
	"slices"
)

// ResolveMode selects how extends chains are followed.
type ResolveMode uint8

const (
	// ResolveSingleLevel merges each child with its parent's declared
	// definition only. A extends B extends C does not see C's fields through B
	// unless B restates them, and only self-extension is reported as a cycle.
	ResolveSingleLevel ResolveMode = iota
	// ResolveTransitive resolves parents before children, so chains of any
	// length inherit fully and every loop is reported.
	ResolveTransitive
)

func (m ResolveMode) String() string {
	if m == ResolveTransitive {
		return "transitive"
	}
	return "single_level"
}

// ParseResolveMode maps the config spelling onto a mode.
func ParseResolveMode(s string) (ResolveMode, error) {
	switch s {
	case "", "single", "single_level":
		return ResolveSingleLevel, nil
	case "transitive":
		return ResolveTransitive, nil
	default:
		return ResolveSingleLevel, fmt.Errorf("unknown inheritance mode %q", s)
	}
}

type resolveOptions struct {
	mode ResolveMode
}

type ResolveOption func(*resolveOptions)

func WithMode(mode ResolveMode) ResolveOption {
	return func(o *resolveOptions) { o.mode = mode }
}

// Resolve flattens extends references. The input is not modified; the result
// keeps declaration order and no entry carries Extends.
func Resolve(defs []EntityDefinition, opts ...ResolveOption) ([]EntityDefinition, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int, len(defs))
	for i := range defs {
		if _, dup := index[defs[i].ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, defs[i].ID)
		}
		index[defs[i].ID] = i
	}

	if o.mode == ResolveTransitive {
		return resolveTransitive(defs, index)
	}

	out := make([]EntityDefinition, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		if def.Extends == "" {
			out = append(out, def.Clone())
			continue
		}
		pi, ok := index[def.Extends]
		if !ok {
			return nil, &MissingParentError{Entity: def.ID, Parent: def.Extends}
		}
		if defs[pi].ID == def.ID {
			return nil, &InheritanceCycleError{ID: def.ID}
		}
		out = append(out, merge(&defs[pi], def))
	}
	return out, nil
}

func resolveTransitive(defs []EntityDefinition, index map[string]int) ([]EntityDefinition, error) {
	const (
		pending = iota
		visiting
		done
	)
	state := make([]uint8, len(defs))
	resolved := make([]EntityDefinition, len(defs))

	var visit func(i int, chain []string) error
	visit = func(i int, chain []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return &InheritanceCycleError{ID: defs[i].ID, Chain: append(chain, defs[i].ID)}
		}
		state[i] = visiting
		def := &defs[i]
		if def.Extends == "" {
			resolved[i] = def.Clone()
		} else {
			pi, ok := index[def.Extends]
			if !ok {
				return &MissingParentError{Entity: def.ID, Parent: def.Extends}
			}
			if err := visit(pi, append(chain, def.ID)); err != nil {
				return err
			}
			resolved[i] = merge(&resolved[pi], def)
		}
		state[i] = done
		return nil
	}

	for i := range defs {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// merge fills the child's unset slots from the parent. The child always wins.
func merge(parent, child *EntityDefinition) EntityDefinition {
	out := child.Clone()
	out.Extends = ""

	c, p := &out.Components, &parent.Components
	if c.Transform == nil {
		c.Transform = clonePtr(p.Transform)
	}
	if c.MeshRenderer == nil {
		c.MeshRenderer = clonePtr(p.MeshRenderer)
	}
	if c.Camera == nil {
		c.Camera = clonePtr(p.Camera)
	}
	if c.PointLight == nil {
		c.PointLight = clonePtr(p.PointLight)
	}
	if c.GaussianSplat == nil {
		c.GaussianSplat = clonePtr(p.GaussianSplat)
	}

	for _, key := range p.Extra.keys {
		if !c.Extra.Has(key) {
			c.Extra.Set(key, cloneNode(p.Extra.values[key]))
		}
	}

	if len(out.Tags) == 0 {
		out.Tags = slices.Clone(parent.Tags)
	}
	return out
}

// Load reads, parses and resolves the document at path. Nothing is returned
// unless every stage succeeds.
func Load(path string, opts ...ResolveOption) (*Document, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Flatten(raw, opts...)
}

// Flatten returns a new document whose entities are resolved.
func Flatten(raw *Document, opts ...ResolveOption) (*Document, error) {
	entities, err := Resolve(raw.Entities, opts...)
	if err != nil {
		return nil, err
	}
	out := &Document{
		Name:     raw.Name,
		Settings: raw.Settings,
		Entities: entities,
	}
	out.Settings.Fog = clonePtr(raw.Settings.Fog)
	return out, nil
}
