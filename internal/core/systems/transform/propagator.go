// Package transform computes world matrices down the parent hierarchy.
package transform

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/livescene/internal/core/components"
	"github.com/zeusync/livescene/internal/core/models"
)

type Mode uint8

const (
	// SinglePass updates roots, then every child from its parent's world
	// matrix as it stood after the root pass. A grandchild therefore lags
	// its grandparent by one tick per level.
	SinglePass Mode = iota
	// Settled walks parents before children so any depth settles in one
	// tick. Entities on a parent loop keep their previous world matrix.
	Settled
)

func (m Mode) String() string {
	switch m {
	case SinglePass:
		return "single_pass"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "single_pass":
		return SinglePass, nil
	case "settled":
		return Settled, nil
	default:
		return SinglePass, fmt.Errorf("unknown hierarchy mode %q", s)
	}
}

// Propagator is the transform system.
type Propagator struct {
	mode Mode
}

func NewPropagator(mode Mode) *Propagator {
	return &Propagator{mode: mode}
}

func (p *Propagator) Name() string { return "transform" }

func (p *Propagator) Mode() Mode { return p.mode }

func (p *Propagator) Update(store *models.Store) error {
	switch p.mode {
	case Settled:
		settled(store)
	default:
		singlePass(store)
	}
	return nil
}

type pending struct {
	t     *components.Transform
	world mgl32.Mat4
}

func singlePass(store *models.Store) {
	var children []*components.Transform
	for _, tr := range models.All[*components.Transform](store) {
		if tr.HasParent() {
			children = append(children, tr)
			continue
		}
		tr.WorldMatrix = tr.LocalMatrix()
		tr.Dirty = false
	}

	updates := make([]pending, 0, len(children))
	for _, tr := range children {
		parent, err := models.Get[*components.Transform](store, tr.Parent)
		if err != nil {
			continue
		}
		updates = append(updates, pending{t: tr, world: parent.WorldMatrix.Mul4(tr.LocalMatrix())})
	}
	for _, u := range updates {
		u.t.WorldMatrix = u.world
		u.t.Dirty = false
	}
}

const (
	unvisited uint8 = iota
	visiting
	done
	broken
)

func settled(store *models.Store) {
	state := make(map[models.Entity]uint8)

	var visit func(e models.Entity, tr *components.Transform) bool
	visit = func(e models.Entity, tr *components.Transform) bool {
		switch state[e] {
		case done:
			return true
		case visiting, broken:
			state[e] = broken
			return false
		}
		state[e] = visiting

		if !tr.HasParent() {
			tr.WorldMatrix = tr.LocalMatrix()
			tr.Dirty = false
			state[e] = done
			return true
		}

		parent, err := models.Get[*components.Transform](store, tr.Parent)
		if err != nil {
			// Stale or transformless parent: leave this subtree for a later tick.
			state[e] = broken
			return false
		}
		if !visit(tr.Parent, parent) {
			state[e] = broken
			return false
		}
		tr.WorldMatrix = parent.WorldMatrix.Mul4(tr.LocalMatrix())
		tr.Dirty = false
		state[e] = done
		return true
	}

	for e, tr := range models.All[*components.Transform](store) {
		visit(e, tr)
	}
}
