package scene

import "gopkg.in/yaml.v3"

// Extras is the ordered bag of component keys this core does not recognise.
// Values are kept as raw YAML nodes so newer content survives an older build.
type Extras struct {
	keys   []string
	values map[string]*yaml.Node
}

func (x *Extras) Set(key string, value *yaml.Node) {
	if x.values == nil {
		x.values = make(map[string]*yaml.Node)
	}
	if _, ok := x.values[key]; !ok {
		x.keys = append(x.keys, key)
	}
	x.values[key] = value
}

func (x Extras) Get(key string) (*yaml.Node, bool) {
	v, ok := x.values[key]
	return v, ok
}

func (x Extras) Has(key string) bool {
	_, ok := x.values[key]
	return ok
}

// Keys returns the keys in declaration order.
func (x Extras) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

func (x Extras) Len() int { return len(x.keys) }

// Decode unmarshals one raw value for a consumer that does understand it.
func (x Extras) Decode(key string, out any) (bool, error) {
	n, ok := x.values[key]
	if !ok {
		return false, nil
	}
	return true, n.Decode(out)
}

func (x Extras) Clone() Extras {
	if len(x.keys) == 0 {
		return Extras{}
	}
	out := Extras{
		keys:   make([]string, len(x.keys)),
		values: make(map[string]*yaml.Node, len(x.values)),
	}
	copy(out.keys, x.keys)
	for k, v := range x.values {
		out.values[k] = cloneNode(v)
	}
	return out
}

// cloneNode copies the node tree. Alias targets stay shared; they are read only.
func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	return &c
}
