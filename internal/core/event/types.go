package event

import "github.com/pizzakick/pizzakick/internal/core/ecs"

// Gameplay events.

type ItemPickedUp struct {
	Player ecs.Entity
	Item   ecs.Entity
	Count  int
}

type ItemDropped struct {
	Player ecs.Entity
	Item   ecs.Entity
	Count  int
}

type ItemKicked struct {
	Player ecs.Entity
	Item   ecs.Entity
	Speed  float64
}

// LevelReloaded is emitted after a level file change respawned the world.
type LevelReloaded struct {
	Path     string
	Entities int
}
