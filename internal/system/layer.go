package system

import (
	"time"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

// Layer is a drawable container the render frontend owns. Systems attach,
// move and detach entity visuals; the frontend draws whatever is attached.
type Layer interface {
	Attach(e ecs.Entity, g *component.Graphics)
	Detach(e ecs.Entity, g *component.Graphics)
	Place(e ecs.Entity, x, y float64)
}

// Camera positions the world layer on screen.
type Camera interface {
	SetOffset(x, y float64)
}

func seconds(d time.Duration) float64 { return d.Seconds() }

// graphicsOf returns the entity's graphics, falling back to the value
// detached this tick or last tick.
func graphicsOf(w *ecs.World, e ecs.Entity) (*component.Graphics, error) {
	if g, err := ecs.Get(w, e, component.GraphicsComponent); err == nil {
		return g, nil
	}
	return ecs.GetRemoved(w, e, component.GraphicsComponent)
}
