package component

import "github.com/pizzakick/pizzakick/internal/core/ecs"

// Vec2 is a position or velocity in world units (pixels, pixels/second).
type Vec2 struct {
	X float64
	Y float64
}

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether r and o intersect. Touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Graphics describes how an entity is drawn. Pure data: the render layer
// owns the actual images.
type Graphics struct {
	Sprite  string  `validate:"required"` // asset key: "player", "pizza", "wall"
	Width   float64 `validate:"gt=0"`
	Height  float64 `validate:"gt=0"`
	AnchorX float64 `validate:"gte=0,lte=1"` // 0 = left edge, 0.5 = centre
	AnchorY float64 `validate:"gte=0,lte=1"`
	ZIndex  int
	Color   uint32 // 0xRRGGBB fill for sprites without an image

	Clip           string // current animation clip, empty for static sprites
	AnimationSpeed float64 `validate:"gte=0"` // frames per tick at 60 TPS
}

// Bounds returns the box g covers when drawn at (x, y).
func (g *Graphics) Bounds(x, y float64) Rect {
	return Rect{
		X: x - g.Width*g.AnchorX,
		Y: y - g.Height*g.AnchorY,
		W: g.Width,
		H: g.Height,
	}
}

// Inventory holds the items a player carries, most recent last.
type Inventory struct {
	MaxItems int `validate:"gte=1"`
	Items    []ecs.Entity
}

// Full reports whether no more items fit.
func (inv *Inventory) Full() bool { return len(inv.Items) >= inv.MaxItems }

// Push appends item. It reports false when the inventory is full.
func (inv *Inventory) Push(item ecs.Entity) bool {
	if inv.Full() {
		return false
	}
	inv.Items = append(inv.Items, item)
	return true
}

// Pop removes and returns the most recently added item.
func (inv *Inventory) Pop() (ecs.Entity, bool) {
	n := len(inv.Items)
	if n == 0 {
		return 0, false
	}
	item := inv.Items[n-1]
	inv.Items = inv.Items[:n-1]
	return item, true
}

// MovementAnimation names the clip to play for each movement direction.
type MovementAnimation struct {
	Up             string  `validate:"required"`
	Down           string  `validate:"required"`
	Left           string  `validate:"required"`
	Right          string  `validate:"required"`
	Stopped        string  `validate:"required"`
	AnimationSpeed float64 `validate:"gt=0"`
}

// Tag is the value type of marker components.
type Tag struct{}
