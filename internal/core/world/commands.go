package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// SpawnCommand describes a runtime entity: a transform plus a mesh renderer,
// outside of any scene document.
type SpawnCommand struct {
	ID       string
	Mesh     string
	Material string
	Position mgl32.Vec3
	Scale    mgl32.Vec3
}

type scaleUpdate struct {
	id    string
	scale mgl32.Vec3
}

type visibilityUpdate struct {
	id      string
	visible bool
}

// CommandQueue collects structural changes from outside the tick goroutine.
// It is safe for concurrent use; the world drains it at the start of Tick.
type CommandQueue struct {
	mu         sync.Mutex
	spawns     []SpawnCommand
	destroys   []string
	scales     []scaleUpdate
	visibility []visibilityUpdate
	load       string
}

func (q *CommandQueue) Spawn(cmd SpawnCommand) {
	q.mu.Lock()
	q.spawns = append(q.spawns, cmd)
	q.mu.Unlock()
}

func (q *CommandQueue) Destroy(id string) {
	q.mu.Lock()
	q.destroys = append(q.destroys, id)
	q.mu.Unlock()
}

func (q *CommandQueue) SetScale(id string, scale mgl32.Vec3) {
	q.mu.Lock()
	q.scales = append(q.scales, scaleUpdate{id: id, scale: scale})
	q.mu.Unlock()
}

func (q *CommandQueue) SetVisible(id string, visible bool) {
	q.mu.Lock()
	q.visibility = append(q.visibility, visibilityUpdate{id: id, visible: visible})
	q.mu.Unlock()
}

// LoadScene asks for a scene switch on the next tick. The last request wins.
func (q *CommandQueue) LoadScene(path string) {
	q.mu.Lock()
	q.load = path
	q.mu.Unlock()
}

func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.spawns) + len(q.destroys) + len(q.scales) + len(q.visibility)
	if q.load != "" {
		n++
	}
	return n
}

type batch struct {
	spawns     []SpawnCommand
	destroys   []string
	scales     []scaleUpdate
	visibility []visibilityUpdate
	load       string
}

func (q *CommandQueue) drain() batch {
	q.mu.Lock()
	defer q.mu.Unlock()
	b := batch{
		spawns:     q.spawns,
		destroys:   q.destroys,
		scales:     q.scales,
		visibility: q.visibility,
		load:       q.load,
	}
	q.spawns, q.destroys, q.scales, q.visibility, q.load = nil, nil, nil, nil, ""
	return b
}

func (q *CommandQueue) clear() { q.drain() }
