package scene

import (
	"testing"

	"github.com/pizzakick/pizzakick/internal/component"
)

func TestLayerAttachPlaceDetach(t *testing.T) {
	l := NewLayer()
	g := &component.Graphics{Sprite: "pizza", Width: 1, Height: 1}
	l.Attach(1, g)
	l.Place(1, 3, 4)
	l.Place(2, 9, 9)

	n, ok := l.Get(1)
	if !ok || n.X != 3 || n.Y != 4 {
		t.Fatalf("node = %+v", n)
	}
	if _, ok := l.Get(2); ok {
		t.Fatalf("place must not create nodes")
	}

	other := &component.Graphics{Sprite: "pizza", Width: 1, Height: 1}
	l.Detach(1, other)
	if l.Len() != 1 {
		t.Fatalf("stale detach removed the node")
	}
	l.Detach(1, g)
	if l.Len() != 0 {
		t.Fatalf("detach failed")
	}
}

func TestNodesDrawOrder(t *testing.T) {
	l := NewLayer()
	l.Attach(1, &component.Graphics{Sprite: "player", ZIndex: 1})
	l.Attach(2, &component.Graphics{Sprite: "wall"})
	l.Attach(3, &component.Graphics{Sprite: "pizza"})

	nodes := l.Nodes()
	got := []string{nodes[0].Graphics.Sprite, nodes[1].Graphics.Sprite, nodes[2].Graphics.Sprite}
	want := []string{"wall", "pizza", "player"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestAnimateAndReset(t *testing.T) {
	s := New()
	s.World.Attach(1, &component.Graphics{Sprite: "player", Clip: "down", AnimationSpeed: 0.5})
	s.World.Attach(2, &component.Graphics{Sprite: "wall"})
	s.World.Animate()
	s.World.Animate()
	if n, _ := s.World.Get(1); n.Frame != 1 {
		t.Fatalf("frame = %v, want 1", n.Frame)
	}
	if n, _ := s.World.Get(2); n.Frame != 0 {
		t.Fatalf("static node animated")
	}

	s.SetOffset(10, 20)
	s.HUD.Attach(3, &component.Graphics{Sprite: "pizza"})
	s.Reset()
	if x, y := s.Offset(); x != 0 || y != 0 || s.World.Len() != 0 || s.HUD.Len() != 0 {
		t.Fatalf("reset left state behind")
	}
}
