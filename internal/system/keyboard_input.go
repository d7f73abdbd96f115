package system

import (
	"math"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/input"
)

// diagonal scales each axis so diagonal movement keeps the same speed.
var diagonal = math.Sin(math.Pi / 4)

type KeyboardInputState struct {
	Keyboard    *input.Keyboard `validate:"required"`
	Speed       float64         `validate:"gt=0"`
	RunModifier float64         `validate:"gte=1"`

	up, down, left, right, running bool
}

func (s *KeyboardInputState) onKey(ev input.Event) {
	switch ev.Action {
	case input.MoveUp:
		s.up = ev.Pressed
	case input.MoveDown:
		s.down = ev.Pressed
	case input.MoveLeft:
		s.left = ev.Pressed
	case input.MoveRight:
		s.right = ev.Pressed
	case input.Run:
		s.running = ev.Pressed
	}
}

// velocity returns the velocity the held keys ask for.
func (s *KeyboardInputState) velocity() component.Vec2 {
	speed := s.Speed
	if s.running {
		speed *= s.RunModifier
	}
	if s.up != s.down && s.left != s.right {
		speed *= diagonal
	}
	var v component.Vec2
	if s.up && !s.down {
		v.Y = -speed
	}
	if s.down && !s.up {
		v.Y = speed
	}
	if s.left && !s.right {
		v.X = -speed
	}
	if s.right && !s.left {
		v.X = speed
	}
	return v
}

var keyboardInputSystem = ecs.NewSystem[KeyboardInputState]("keyboardInput",
	ecs.Struct[KeyboardInputState](),
	[]ecs.QueryDecl{
		ecs.Require("entities", component.VelocityComponent, component.PlayerControlledComponent),
	},
	func(ctx *ecs.Context, s *KeyboardInputState) error {
		want := s.velocity()
		for _, e := range ctx.Query("entities").Results() {
			v, err := ecs.Get(ctx.World, e, component.VelocityComponent)
			if err != nil {
				return err
			}
			*v = want
		}
		return nil
	},
	func(s *KeyboardInputState) (ecs.Teardown, error) {
		unsubscribe := s.Keyboard.Subscribe(s.onKey)
		return unsubscribe, nil
	})

// NewKeyboardInputSystem drives player velocity from held movement keys.
func NewKeyboardInputSystem(kb *input.Keyboard, speed, runModifier float64) ecs.Runnable {
	return keyboardInputSystem.With(KeyboardInputState{
		Keyboard:    kb,
		Speed:       speed,
		RunModifier: runModifier,
	})
}
