package system

import (
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/core/event"
)

type EventsState struct {
	Bus *event.Bus `validate:"required"`
}

// eventsSystem rotates the bus and delivers last tick's events. Registered
// first so handlers see a consistent world before gameplay runs.
var eventsSystem = ecs.NewSystem[EventsState]("events", ecs.Struct[EventsState](), nil,
	func(_ *ecs.Context, s *EventsState) error {
		s.Bus.SwapBuffers()
		s.Bus.DispatchAll()
		return nil
	}, nil)

func NewEventsSystem(bus *event.Bus) ecs.Runnable {
	return eventsSystem.With(EventsState{Bus: bus})
}
