package scene

import (
	"sort"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

// Node is one attached visual.
type Node struct {
	Entity   ecs.Entity
	Graphics *component.Graphics
	X, Y     float64
	Frame    float64 // animation cursor, advanced by Animate

	seq uint64
}

// Layer is an ordered set of visuals keyed by entity. It implements the
// gameplay systems' Layer interface.
type Layer struct {
	nodes map[ecs.Entity]*Node
	seq   uint64
}

func NewLayer() *Layer {
	return &Layer{nodes: make(map[ecs.Entity]*Node)}
}

// Attach adds or replaces the visual for e.
func (l *Layer) Attach(e ecs.Entity, g *component.Graphics) {
	l.seq++
	l.nodes[e] = &Node{Entity: e, Graphics: g, seq: l.seq}
}

// Detach removes e's visual. A non-nil g must match the attached graphics;
// a stale detach for a visual that was since replaced is ignored.
func (l *Layer) Detach(e ecs.Entity, g *component.Graphics) {
	n, ok := l.nodes[e]
	if !ok || (g != nil && n.Graphics != g) {
		return
	}
	delete(l.nodes, e)
}

// Place moves e's visual. Unknown entities are ignored.
func (l *Layer) Place(e ecs.Entity, x, y float64) {
	if n, ok := l.nodes[e]; ok {
		n.X, n.Y = x, y
	}
}

// Get returns e's node.
func (l *Layer) Get(e ecs.Entity) (*Node, bool) {
	n, ok := l.nodes[e]
	return n, ok
}

func (l *Layer) Len() int { return len(l.nodes) }

// Nodes returns the visuals in draw order: lower ZIndex first, then
// attach order.
func (l *Layer) Nodes() []*Node {
	out := make([]*Node, 0, len(l.nodes))
	for _, n := range l.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Graphics.ZIndex != out[j].Graphics.ZIndex {
			return out[i].Graphics.ZIndex < out[j].Graphics.ZIndex
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Animate advances every animated node by its clip's speed.
func (l *Layer) Animate() {
	for _, n := range l.nodes {
		if n.Graphics.Clip != "" {
			n.Frame += n.Graphics.AnimationSpeed
		}
	}
}

func (l *Layer) clear() {
	clear(l.nodes)
	l.seq = 0
}

// Scene is the world layer, scrolled by the camera, and the HUD layer
// drawn in screen space on top.
type Scene struct {
	World *Layer
	HUD   *Layer

	offsetX, offsetY float64
}

func New() *Scene {
	return &Scene{World: NewLayer(), HUD: NewLayer()}
}

// SetOffset positions the world layer on screen.
func (s *Scene) SetOffset(x, y float64) { s.offsetX, s.offsetY = x, y }

func (s *Scene) Offset() (x, y float64) { return s.offsetX, s.offsetY }

// Reset drops every visual, for a level reload.
func (s *Scene) Reset() {
	s.World.clear()
	s.HUD.clear()
	s.offsetX, s.offsetY = 0, 0
}
