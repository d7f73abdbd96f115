package component

import "github.com/pizzakick/pizzakick/internal/core/ecs"

// Component kinds, declared once for the process.
var (
	PositionComponent          = ecs.NewKind[Vec2]("position", ecs.Struct[Vec2]())
	VelocityComponent          = ecs.NewKind[Vec2]("velocity", ecs.Struct[Vec2]())
	FrictionComponent          = ecs.NewKind[float64]("friction", ecs.Var[float64]("gte=0"))
	GraphicsComponent          = ecs.NewKind[Graphics]("graphics", ecs.Struct[Graphics]())
	InventoryComponent         = ecs.NewKind[Inventory]("inventory", ecs.Struct[Inventory]())
	MovementAnimationComponent = ecs.NewKind[MovementAnimation]("movementAnimation", ecs.Struct[MovementAnimation]())

	// Markers carry no data.
	CollidableComponent        = ecs.NewKind[Tag]("collidable", nil)
	PlayerControlledComponent  = ecs.NewKind[Tag]("playerControlled", nil)
	PossessedByPlayerComponent = ecs.NewKind[Tag]("possessedByPlayer", nil)
	ItemComponent              = ecs.NewKind[Tag]("item", nil)
)

// Mark attaches a marker kind to e.
func Mark(w *ecs.World, e ecs.Entity, kind *ecs.Kind[Tag]) error {
	return ecs.Add(w, e, kind, &Tag{})
}
