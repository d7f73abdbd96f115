package data

import (
	"fmt"
	"math/rand"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

// Sprite dimensions.
const (
	PlayerWidth  = 24
	PlayerHeight = 32
	PizzaSize    = 50

	WallColor   = 0x555555
	PizzaColor  = 0xe8a33d
	PlayerColor = 0xf2f2f2
)

// SpawnOptions carries the per-run tuning for spawned entities.
type SpawnOptions struct {
	MaxItems int
}

// Spawned summarises what Spawn created.
type Spawned struct {
	Player ecs.Entity
	Walls  int
	Pizzas int
}

// Spawn creates the entities for lvl in w. Pizza positions are drawn from
// rng within each pizza cell, inset by the level's padding.
func Spawn(w *ecs.World, lvl *Level, rng *rand.Rand, opts SpawnOptions) (Spawned, error) {
	var s Spawned
	cell := float64(lvl.CellSize)
	for _, c := range lvl.Cells() {
		x, y := c.Col*lvl.CellSize, c.Row*lvl.CellSize
		var err error
		switch c.Kind {
		case CellWall:
			err = AddWall(w, float64(x), float64(y), cell, cell)
			s.Walls++
		case CellPizza:
			px := randBetween(rng, x+lvl.PizzaPadding, x+lvl.CellSize-lvl.PizzaPadding)
			py := randBetween(rng, y+lvl.PizzaPadding, y+lvl.CellSize-lvl.PizzaPadding)
			_, err = AddPizza(w, float64(px), float64(py))
			s.Pizzas++
		case CellPlayer:
			mid := lvl.CellSize / 2
			s.Player, err = AddPlayer(w, float64(x+mid), float64(y+mid), opts.MaxItems)
		}
		if err != nil {
			return s, fmt.Errorf("spawn cell %d,%d: %w", c.Col, c.Row, err)
		}
	}
	return s, nil
}

func randBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// AddPlayer creates the keyboard-controlled player.
func AddPlayer(w *ecs.World, x, y float64, maxItems int) (ecs.Entity, error) {
	e := w.CreateEntity()
	err := firstErr(
		ecs.Add(w, e, component.PositionComponent, &component.Vec2{X: x, Y: y}),
		ecs.Add(w, e, component.VelocityComponent, &component.Vec2{}),
		component.Mark(w, e, component.PlayerControlledComponent),
		ecs.Add(w, e, component.GraphicsComponent, &component.Graphics{
			Sprite:         "player",
			Width:          PlayerWidth,
			Height:         PlayerHeight,
			AnchorX:        0.5,
			AnchorY:        0.5,
			ZIndex:         1,
			Color:          PlayerColor,
			Clip:           "down",
			AnimationSpeed: 0.1,
		}),
		ecs.Add(w, e, component.InventoryComponent, &component.Inventory{MaxItems: maxItems}),
		ecs.Add(w, e, component.MovementAnimationComponent, &component.MovementAnimation{
			Up:             "up",
			Down:           "down",
			Left:           "left",
			Right:          "right",
			Stopped:        "stopped",
			AnimationSpeed: 0.1,
		}),
	)
	return e, err
}

// AddPizza creates a loose pizza item.
func AddPizza(w *ecs.World, x, y float64) (ecs.Entity, error) {
	e := w.CreateEntity()
	err := firstErr(
		ecs.Add(w, e, component.PositionComponent, &component.Vec2{X: x, Y: y}),
		component.Mark(w, e, component.ItemComponent),
		ecs.Add(w, e, component.GraphicsComponent, &component.Graphics{
			Sprite:  "pizza",
			Width:   PizzaSize,
			Height:  PizzaSize,
			AnchorX: 0.5,
			AnchorY: 0.5,
			Color:   PizzaColor,
		}),
	)
	return e, err
}

// AddWall creates a solid wall block with its top-left corner at (x, y).
func AddWall(w *ecs.World, x, y, width, height float64) error {
	e := w.CreateEntity()
	return firstErr(
		ecs.Add(w, e, component.PositionComponent, &component.Vec2{X: x, Y: y}),
		ecs.Add(w, e, component.GraphicsComponent, &component.Graphics{
			Sprite: "wall",
			Width:  width,
			Height: height,
			Color:  WallColor,
		}),
		component.Mark(w, e, component.CollidableComponent),
	)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
