package system

import (
	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

// stoppedSlowdown divides the animation speed of the idle clip.
const stoppedSlowdown = 6

// playerAnimationSystem picks the movement clip from the velocity direction.
// Horizontal movement wins over vertical.
var playerAnimationSystem = ecs.NewSystem[struct{}]("playerAnimation", nil,
	[]ecs.QueryDecl{
		ecs.Require("entities", component.GraphicsComponent, component.VelocityComponent, component.MovementAnimationComponent),
	},
	func(ctx *ecs.Context, _ *struct{}) error {
		w := ctx.World
		for _, e := range ctx.Query("entities").Results() {
			v, err := ecs.Get(w, e, component.VelocityComponent)
			if err != nil {
				return err
			}
			anim, err := ecs.Get(w, e, component.MovementAnimationComponent)
			if err != nil {
				return err
			}
			g, err := ecs.Get(w, e, component.GraphicsComponent)
			if err != nil {
				return err
			}

			clip, speed := anim.Stopped, anim.AnimationSpeed/stoppedSlowdown
			switch {
			case v.X < 0:
				clip, speed = anim.Left, anim.AnimationSpeed
			case v.X > 0:
				clip, speed = anim.Right, anim.AnimationSpeed
			case v.Y < 0:
				clip, speed = anim.Up, anim.AnimationSpeed
			case v.Y > 0:
				clip, speed = anim.Down, anim.AnimationSpeed
			}
			if g.Clip != clip {
				g.Clip = clip
				g.AnimationSpeed = speed
			}
		}
		return nil
	}, nil)

func NewPlayerAnimationSystem() ecs.Runnable {
	return playerAnimationSystem.With(struct{}{})
}
