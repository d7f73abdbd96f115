package system

import (
	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

type GraphicsState struct {
	World Layer `validate:"required"`
}

// graphicsSystem syncs world-layer visuals with positioned entities.
// Exits are handled before entries: an item dropped right after being
// picked up leaves and re-enters on consecutive ticks.
var graphicsSystem = ecs.NewSystem[GraphicsState]("graphics", ecs.Struct[GraphicsState](),
	[]ecs.QueryDecl{
		ecs.Require("entities", component.PositionComponent, component.GraphicsComponent),
	},
	func(ctx *ecs.Context, s *GraphicsState) error {
		w := ctx.World
		entities := ctx.Query("entities")
		for _, e := range entities.Removed() {
			g, err := graphicsOf(w, e)
			if err != nil {
				return err
			}
			s.World.Detach(e, g)
		}
		for _, e := range entities.Added() {
			g, err := ecs.Get(w, e, component.GraphicsComponent)
			if err != nil {
				return err
			}
			s.World.Attach(e, g)
		}
		for _, e := range entities.Results() {
			p, err := ecs.Get(w, e, component.PositionComponent)
			if err != nil {
				return err
			}
			s.World.Place(e, p.X, p.Y)
		}
		return nil
	}, nil)

func NewGraphicsSystem(world Layer) ecs.Runnable {
	return graphicsSystem.With(GraphicsState{World: world})
}
