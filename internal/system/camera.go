package system

import (
	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
)

type CameraState struct {
	Camera Camera  `validate:"required"`
	Width  float64 `validate:"gt=0"`
	Height float64 `validate:"gt=0"`
}

// cameraSystem keeps the player centred by shifting the world layer.
var cameraSystem = ecs.NewSystem[CameraState]("camera", ecs.Struct[CameraState](),
	[]ecs.QueryDecl{
		ecs.Require("players", component.PositionComponent, component.PlayerControlledComponent),
	},
	func(ctx *ecs.Context, s *CameraState) error {
		for _, e := range ctx.Query("players").Results() {
			p, err := ecs.Get(ctx.World, e, component.PositionComponent)
			if err != nil {
				return err
			}
			s.Camera.SetOffset(s.Width/2-p.X, s.Height/2-p.Y)
		}
		return nil
	}, nil)

func NewCameraSystem(cam Camera, width, height float64) ecs.Runnable {
	return cameraSystem.With(CameraState{Camera: cam, Width: width, Height: height})
}
