package system

import (
	"fmt"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/core/event"
	"github.com/pizzakick/pizzakick/internal/input"
)

type DropState struct {
	Keyboard *input.Keyboard `validate:"required"`
	Bus      *event.Bus      `validate:"required"`

	pressed bool
}

// dropSystem puts the most recently picked up item back at the player's
// feet.
var dropSystem = ecs.NewSystem[DropState]("drop", ecs.Struct[DropState](),
	[]ecs.QueryDecl{
		ecs.Require("players", component.PositionComponent, component.PlayerControlledComponent, component.InventoryComponent),
	},
	func(ctx *ecs.Context, s *DropState) error {
		if !s.pressed {
			return nil
		}
		s.pressed = false

		w := ctx.World
		player, ok := ctx.Query("players").First()
		if !ok {
			return nil
		}
		pp, err := ecs.Get(w, player, component.PositionComponent)
		if err != nil {
			return err
		}
		inv, err := ecs.Get(w, player, component.InventoryComponent)
		if err != nil {
			return err
		}
		item, ok := inv.Pop()
		if !ok {
			return nil
		}
		if err := ecs.Add(w, item, component.PositionComponent, &component.Vec2{X: pp.X, Y: pp.Y}); err != nil {
			return fmt.Errorf("drop %s: %w", item, err)
		}
		ecs.Remove(w, item, component.PossessedByPlayerComponent)
		event.Emit(s.Bus, event.ItemDropped{Player: player, Item: item, Count: len(inv.Items)})
		return nil
	},
	func(s *DropState) (ecs.Teardown, error) {
		return s.Keyboard.Subscribe(func(ev input.Event) {
			if ev.Pressed && ev.Action == input.Drop {
				s.pressed = true
			}
		}), nil
	})

func NewDropSystem(kb *input.Keyboard, bus *event.Bus) ecs.Runnable {
	return dropSystem.With(DropState{Keyboard: kb, Bus: bus})
}
