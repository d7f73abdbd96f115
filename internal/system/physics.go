package system

import (
	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

// physicsSystem integrates velocity, resolves wall collisions per axis and
// applies friction. Players stop at walls; everything else bounces.
var physicsSystem = ecs.NewSystem[struct{}]("physics", nil,
	[]ecs.QueryDecl{
		ecs.Require("entities", component.GraphicsComponent, component.PositionComponent, component.VelocityComponent),
		ecs.Require("collidables", component.CollidableComponent, component.GraphicsComponent, component.PositionComponent),
	},
	func(ctx *ecs.Context, _ *struct{}) error {
		w := ctx.World
		dt := seconds(ctx.Delta)
		walls := ctx.Query("collidables").Results()

		for _, e := range ctx.Query("entities").Results() {
			pos, err := ecs.Get(w, e, component.PositionComponent)
			if err != nil {
				return err
			}
			vel, err := ecs.Get(w, e, component.VelocityComponent)
			if err != nil {
				return err
			}
			dx, dy := vel.X*dt, vel.Y*dt

			if dx != 0 || dy != 0 {
				bounds, err := boundsOf(w, e)
				if err != nil {
					return err
				}
				boundsX := bounds.Translate(dx, 0)
				boundsY := bounds.Translate(0, dy)
				hitX, hitY := false, false
				for _, c := range walls {
					if c == e {
						continue
					}
					cb, err := boundsOf(w, c)
					if err != nil {
						return err
					}
					hitX = hitX || boundsX.Overlaps(cb)
					hitY = hitY || boundsY.Overlaps(cb)
				}
				player := ecs.Has(w, e, component.PlayerControlledComponent)
				if hitX {
					dx = 0
					if !player {
						vel.X = -vel.X
					}
				}
				if hitY {
					dy = 0
					if !player {
						vel.Y = -vel.Y
					}
				}
			}
			pos.X += dx
			pos.Y += dy

			if f, err := ecs.Get(w, e, component.FrictionComponent); err == nil {
				vel.X = decay(vel.X, *f*dt)
				vel.Y = decay(vel.Y, *f*dt)
			}
		}
		return nil
	}, nil)

// boundsOf is the box e's graphics cover at its position.
func boundsOf(w *ecs.World, e ecs.Entity) (component.Rect, error) {
	p, err := ecs.Get(w, e, component.PositionComponent)
	if err != nil {
		return component.Rect{}, err
	}
	g, err := ecs.Get(w, e, component.GraphicsComponent)
	if err != nil {
		return component.Rect{}, err
	}
	return g.Bounds(p.X, p.Y), nil
}

// decay moves v toward zero by amount without crossing it.
func decay(v, amount float64) float64 {
	if v < 0 {
		return min(0, v+amount)
	}
	return max(0, v-amount)
}

func NewPhysicsSystem() ecs.Runnable {
	return physicsSystem.With(struct{}{})
}
