package system

import (
	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

type InventoryGraphicsState struct {
	HUD     Layer   `validate:"required"`
	Left    float64 `validate:"gte=0"`
	Top     float64 `validate:"gte=0"`
	Spacing float64 `validate:"gt=0"`
}

// inventoryGraphicsSystem shows carried items as a column on the HUD.
var inventoryGraphicsSystem = ecs.NewSystem[InventoryGraphicsState]("inventoryGraphics",
	ecs.Struct[InventoryGraphicsState](),
	[]ecs.QueryDecl{
		ecs.Require("items", component.ItemComponent, component.GraphicsComponent, component.PossessedByPlayerComponent),
	},
	func(ctx *ecs.Context, s *InventoryGraphicsState) error {
		w := ctx.World
		items := ctx.Query("items")
		for _, e := range items.Removed() {
			g, err := graphicsOf(w, e)
			if err != nil {
				return err
			}
			s.HUD.Detach(e, g)
		}
		for _, e := range items.Added() {
			g, err := ecs.Get(w, e, component.GraphicsComponent)
			if err != nil {
				return err
			}
			s.HUD.Attach(e, g)
		}
		y := s.Top
		for _, e := range items.Results() {
			y += s.Spacing
			s.HUD.Place(e, s.Left, y)
		}
		return nil
	}, nil)

func NewInventoryGraphicsSystem(hud Layer) ecs.Runnable {
	return inventoryGraphicsSystem.With(InventoryGraphicsState{
		HUD:     hud,
		Left:    40,
		Top:     40,
		Spacing: 40,
	})
}
