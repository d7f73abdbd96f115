package system

import (
	"fmt"
	"math"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/core/event"
	"github.com/pizzakick/pizzakick/internal/input"
	"github.com/pizzakick/pizzakick/internal/scripting"
)

// Kicker computes the velocity a kicked item receives.
type Kicker interface {
	CalcKick(ctx scripting.KickContext) scripting.KickResult
}

// KickerFunc adapts a plain function to Kicker.
type KickerFunc func(scripting.KickContext) scripting.KickResult

func (f KickerFunc) CalcKick(ctx scripting.KickContext) scripting.KickResult { return f(ctx) }

type InteractState struct {
	Keyboard    *input.Keyboard `validate:"required"`
	Bus         *event.Bus      `validate:"required"`
	Kicker      Kicker          `validate:"required"`
	PickupRange float64         `validate:"gt=0"`
	Proximity   float64         `validate:"gt=0"`
	MaxSpeed    float64         `validate:"gte=0"`
	Friction    float64         `validate:"gte=0"`

	interact, kicking bool
}

func (s *InteractState) onKey(ev input.Event) {
	if !ev.Pressed {
		return
	}
	switch ev.Action {
	case input.Interact:
		s.interact = true
	case input.Kick:
		s.kicking = true
	}
}

// interactSystem handles the interact key (pick up the nearest loose item
// in reach, if the inventory has room) and the kick key (launch every loose
// item within kicking distance).
var interactSystem = ecs.NewSystem[InteractState]("interact", ecs.Struct[InteractState](),
	[]ecs.QueryDecl{
		ecs.Require("players", component.PositionComponent, component.PlayerControlledComponent, component.InventoryComponent),
		ecs.Require("items", component.ItemComponent, component.PositionComponent),
	},
	func(ctx *ecs.Context, s *InteractState) error {
		interact, kicking := s.interact, s.kicking
		s.interact, s.kicking = false, false

		player, ok := ctx.Query("players").First()
		if !ok {
			return nil
		}
		p, err := ecs.Get(ctx.World, player, component.PositionComponent)
		if err != nil {
			return err
		}
		pp := *p
		if interact {
			if err := s.pickUp(ctx, player, pp); err != nil {
				return err
			}
		}
		if kicking {
			if err := s.kick(ctx, player, pp); err != nil {
				return err
			}
		}
		return nil
	},
	func(s *InteractState) (ecs.Teardown, error) {
		return s.Keyboard.Subscribe(s.onKey), nil
	})

func (s *InteractState) pickUp(ctx *ecs.Context, player ecs.Entity, pp component.Vec2) error {
	w := ctx.World
	inv, err := ecs.Get(w, player, component.InventoryComponent)
	if err != nil {
		return err
	}
	if inv.Full() {
		return nil
	}

	var nearest ecs.Entity
	best := math.Inf(1)
	for _, item := range ctx.Query("items").Results() {
		p, err := ecs.Get(w, item, component.PositionComponent)
		if err != nil {
			return err
		}
		if d := math.Hypot(p.X-pp.X, p.Y-pp.Y); d < s.PickupRange && d < best {
			nearest, best = item, d
		}
	}
	if nearest.IsZero() {
		return nil
	}

	ecs.Remove(w, nearest, component.PositionComponent)
	ecs.Remove(w, nearest, component.VelocityComponent)
	ecs.Remove(w, nearest, component.FrictionComponent)
	inv.Push(nearest)
	if err := component.Mark(w, nearest, component.PossessedByPlayerComponent); err != nil {
		return fmt.Errorf("pick up %s: %w", nearest, err)
	}
	event.Emit(s.Bus, event.ItemPickedUp{Player: player, Item: nearest, Count: len(inv.Items)})
	return nil
}

func (s *InteractState) kick(ctx *ecs.Context, player ecs.Entity, pp component.Vec2) error {
	w := ctx.World
	for _, item := range ctx.Query("items").Results() {
		p, err := ecs.Get(w, item, component.PositionComponent)
		if err != nil {
			return fmt.Errorf("kick: %w", err)
		}
		dx, dy := p.X-pp.X, p.Y-pp.Y
		res := s.Kicker.CalcKick(scripting.KickContext{
			DX:        dx,
			DY:        dy,
			Distance:  math.Hypot(dx, dy),
			Proximity: s.Proximity,
			MaxSpeed:  s.MaxSpeed,
			Friction:  s.Friction,
		})
		if !res.Kicked {
			continue
		}
		friction := res.Friction
		if err := ecs.Add(w, item, component.VelocityComponent, &component.Vec2{X: res.VX, Y: res.VY}); err != nil {
			return fmt.Errorf("kick %s: %w", item, err)
		}
		if err := ecs.Add(w, item, component.FrictionComponent, &friction); err != nil {
			return fmt.Errorf("kick %s: %w", item, err)
		}
		event.Emit(s.Bus, event.ItemKicked{Player: player, Item: item, Speed: math.Hypot(res.VX, res.VY)})
	}
	return nil
}

// InteractOptions carries the interact system's tuning.
type InteractOptions struct {
	PickupRange float64
	Proximity   float64
	MaxSpeed    float64
	Friction    float64
}

func NewInteractSystem(kb *input.Keyboard, bus *event.Bus, kicker Kicker, opts InteractOptions) ecs.Runnable {
	return interactSystem.With(InteractState{
		Keyboard:    kb,
		Bus:         bus,
		Kicker:      kicker,
		PickupRange: opts.PickupRange,
		Proximity:   opts.Proximity,
		MaxSpeed:    opts.MaxSpeed,
		Friction:    opts.Friction,
	})
}
