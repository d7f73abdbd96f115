package system

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/core/event"
	"github.com/pizzakick/pizzakick/internal/data"
	"github.com/pizzakick/pizzakick/internal/input"
	"github.com/pizzakick/pizzakick/internal/scripting"
)

type fakeNode struct {
	g    *component.Graphics
	x, y float64
}

type fakeLayer struct {
	nodes map[ecs.Entity]*fakeNode
}

func newFakeLayer() *fakeLayer { return &fakeLayer{nodes: make(map[ecs.Entity]*fakeNode)} }

func (l *fakeLayer) Attach(e ecs.Entity, g *component.Graphics) { l.nodes[e] = &fakeNode{g: g} }
func (l *fakeLayer) Detach(e ecs.Entity, _ *component.Graphics) { delete(l.nodes, e) }
func (l *fakeLayer) Place(e ecs.Entity, x, y float64) {
	if n, ok := l.nodes[e]; ok {
		n.x, n.y = x, y
	}
}

type fakeCamera struct{ x, y float64 }

func (c *fakeCamera) SetOffset(x, y float64) { c.x, c.y = x, y }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// rig is a world with the full gameplay pipeline registered.
type rig struct {
	w     *ecs.World
	kb    *input.Keyboard
	bus   *event.Bus
	world *fakeLayer
	hud   *fakeLayer
	cam   *fakeCamera
}

func newRig(t *testing.T, setup func(w *ecs.World)) *rig {
	t.Helper()
	r := &rig{
		w:     ecs.NewWorld(),
		kb:    input.NewKeyboard(),
		bus:   event.NewBus(),
		world: newFakeLayer(),
		hud:   newFakeLayer(),
		cam:   &fakeCamera{},
	}
	if setup != nil {
		setup(r.w)
	}
	err := r.w.Register(
		NewEventsSystem(r.bus),
		NewKeyboardInputSystem(r.kb, 100, 2),
		NewPhysicsSystem(),
		NewCameraSystem(r.cam, 800, 600),
		NewInteractSystem(r.kb, r.bus, KickerFunc(scripting.DefaultKick), InteractOptions{
			PickupRange: 20, Proximity: 40, MaxSpeed: 500, Friction: 420,
		}),
		NewDropSystem(r.kb, r.bus),
		NewInventoryGraphicsSystem(r.hud),
		NewPlayerAnimationSystem(),
		NewGraphicsSystem(r.world),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	t.Cleanup(r.w.Shutdown)
	return r
}

func (r *rig) step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := r.w.Execute(16 * time.Millisecond); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}
}

func (r *rig) tap(t *testing.T, a input.Action) {
	t.Helper()
	r.kb.Press(a)
	r.step(t, 1)
	r.kb.Release(a)
}

func mustPlayer(t *testing.T, w *ecs.World, x, y float64, maxItems int) ecs.Entity {
	t.Helper()
	e, err := data.AddPlayer(w, x, y, maxItems)
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	return e
}

func mustPizza(t *testing.T, w *ecs.World, x, y float64) ecs.Entity {
	t.Helper()
	e, err := data.AddPizza(w, x, y)
	if err != nil {
		t.Fatalf("add pizza: %v", err)
	}
	return e
}

func TestKeyboardInputVelocity(t *testing.T) {
	d := 100 * math.Sin(math.Pi/4)
	cases := []struct {
		name   string
		keys   []input.Action
		vx, vy float64
	}{
		{"idle", nil, 0, 0},
		{"up", []input.Action{input.MoveUp}, 0, -100},
		{"right_run", []input.Action{input.MoveRight, input.Run}, 200, 0},
		{"diagonal", []input.Action{input.MoveDown, input.MoveLeft}, -d, d},
		{"opposed", []input.Action{input.MoveLeft, input.MoveRight}, 0, 0},
		{"diagonal_run", []input.Action{input.MoveUp, input.MoveRight, input.Run}, 2 * d, -2 * d},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var player ecs.Entity
			r := newRig(t, func(w *ecs.World) { player = mustPlayer(t, w, 500, 500, 4) })
			for _, k := range c.keys {
				r.kb.Press(k)
			}
			r.step(t, 1)
			v := ecs.MustGet(r.w, player, component.VelocityComponent)
			if !near(v.X, c.vx) || !near(v.Y, c.vy) {
				t.Fatalf("velocity = %+v, want (%v, %v)", v, c.vx, c.vy)
			}
		})
	}
}

func TestInputSubscriptionsReleasedOnShutdown(t *testing.T) {
	r := newRig(t, nil)
	if r.kb.Subscribers() != 3 {
		t.Fatalf("subscribers = %d, want 3", r.kb.Subscribers())
	}
	r.w.Shutdown()
	if r.kb.Subscribers() != 0 {
		t.Fatalf("subscribers after shutdown = %d", r.kb.Subscribers())
	}
}

func TestPhysics(t *testing.T) {
	const dt = 100 * time.Millisecond
	cases := []struct {
		name     string
		player   bool
		x        float64
		vx       float64
		friction float64
		wantX    float64
		wantVX   float64
	}{
		{"player_blocked", true, 100, 100, 0, 100, 100},
		{"item_bounces", false, 80, 200, 0, 80, -200},
		{"free_move", false, 0, -100, 0, -10, -100},
		{"friction", false, 0, -100, 420, -10, -58},
		{"friction_stops", false, 0, -10, 420, -1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			if err := data.AddWall(w, 120, 50, 50, 100); err != nil {
				t.Fatalf("wall: %v", err)
			}
			var e ecs.Entity
			if c.player {
				e = mustPlayer(t, w, c.x, 100, 4)
			} else {
				e = mustPizza(t, w, c.x, 100)
				if c.friction > 0 {
					f := c.friction
					if err := ecs.Add(w, e, component.FrictionComponent, &f); err != nil {
						t.Fatalf("friction: %v", err)
					}
				}
			}
			if err := ecs.Add(w, e, component.VelocityComponent, &component.Vec2{X: c.vx}); err != nil {
				t.Fatalf("velocity: %v", err)
			}
			if err := w.RegisterSystem(NewPhysicsSystem()); err != nil {
				t.Fatalf("register: %v", err)
			}
			if err := w.Execute(dt); err != nil {
				t.Fatalf("execute: %v", err)
			}
			p := ecs.MustGet(w, e, component.PositionComponent)
			v := ecs.MustGet(w, e, component.VelocityComponent)
			if !near(p.X, c.wantX) || !near(v.X, c.wantVX) {
				t.Fatalf("x=%v vx=%v, want x=%v vx=%v", p.X, v.X, c.wantX, c.wantVX)
			}
		})
	}
}

func TestCameraCentresPlayer(t *testing.T) {
	r := newRig(t, func(w *ecs.World) { mustPlayer(t, w, 100, 100, 4) })
	r.step(t, 1)
	if r.cam.x != 300 || r.cam.y != 200 {
		t.Fatalf("offset = (%v, %v), want (300, 200)", r.cam.x, r.cam.y)
	}
}

func TestPickUpAndDrop(t *testing.T) {
	var player, pizza ecs.Entity
	r := newRig(t, func(w *ecs.World) {
		player = mustPlayer(t, w, 100, 100, 4)
		pizza = mustPizza(t, w, 110, 100)
	})
	var picked []event.ItemPickedUp
	var dropped []event.ItemDropped
	event.Subscribe(r.bus, func(ev event.ItemPickedUp) { picked = append(picked, ev) })
	event.Subscribe(r.bus, func(ev event.ItemDropped) { dropped = append(dropped, ev) })

	r.step(t, 1)
	if _, ok := r.world.nodes[pizza]; !ok {
		t.Fatalf("pizza not attached to the world layer")
	}

	r.tap(t, input.Interact)
	if ecs.Has(r.w, pizza, component.PositionComponent) {
		t.Fatalf("picked up pizza still has a position")
	}
	if !ecs.Has(r.w, pizza, component.PossessedByPlayerComponent) {
		t.Fatalf("picked up pizza not marked possessed")
	}
	if inv := ecs.MustGet(r.w, player, component.InventoryComponent); len(inv.Items) != 1 || inv.Items[0] != pizza {
		t.Fatalf("inventory = %+v", inv.Items)
	}
	if n, ok := r.hud.nodes[pizza]; !ok || n.x != 40 || n.y != 80 {
		t.Fatalf("hud node = %+v", n)
	}

	r.step(t, 1)
	if _, ok := r.world.nodes[pizza]; ok {
		t.Fatalf("pizza still on the world layer after pickup")
	}
	if len(picked) != 1 || picked[0].Item != pizza || picked[0].Count != 1 {
		t.Fatalf("pickup events = %+v", picked)
	}

	r.tap(t, input.Drop)
	pos, err := ecs.Get(r.w, pizza, component.PositionComponent)
	if err != nil {
		t.Fatalf("dropped pizza has no position: %v", err)
	}
	if pos.X != 100 || pos.Y != 100 {
		t.Fatalf("dropped at %+v, want player position", pos)
	}
	if _, ok := r.world.nodes[pizza]; !ok {
		t.Fatalf("dropped pizza not back on the world layer")
	}
	r.step(t, 1)
	if _, ok := r.hud.nodes[pizza]; ok {
		t.Fatalf("dropped pizza still on the hud")
	}
	if len(dropped) != 1 || dropped[0].Count != 0 {
		t.Fatalf("drop events = %+v", dropped)
	}
}

func TestPickUpRules(t *testing.T) {
	cases := []struct {
		name     string
		maxItems int
		held     int
		pizzaX   float64
		want     bool
	}{
		{"in_range", 4, 0, 115, true},
		{"out_of_range", 4, 0, 125, false},
		{"inventory_full", 1, 1, 110, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var player, pizza ecs.Entity
			r := newRig(t, func(w *ecs.World) {
				player = mustPlayer(t, w, 100, 100, c.maxItems)
				pizza = mustPizza(t, w, c.pizzaX, 100)
				inv := ecs.MustGet(w, player, component.InventoryComponent)
				for i := 0; i < c.held; i++ {
					inv.Items = append(inv.Items, w.CreateEntity())
				}
			})
			r.tap(t, input.Interact)
			if got := ecs.Has(r.w, pizza, component.PossessedByPlayerComponent); got != c.want {
				t.Fatalf("picked up = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPickUpChoosesNearest(t *testing.T) {
	var far, close ecs.Entity
	r := newRig(t, func(w *ecs.World) {
		mustPlayer(t, w, 100, 100, 4)
		far = mustPizza(t, w, 115, 100)
		close = mustPizza(t, w, 100, 95)
	})
	r.tap(t, input.Interact)
	if !ecs.Has(r.w, close, component.PossessedByPlayerComponent) || ecs.Has(r.w, far, component.PossessedByPlayerComponent) {
		t.Fatalf("expected only the nearest pizza to be picked up")
	}
}

func TestKick(t *testing.T) {
	var near1, far ecs.Entity
	r := newRig(t, func(w *ecs.World) {
		mustPlayer(t, w, 100, 100, 4)
		near1 = mustPizza(t, w, 130, 100)
		far = mustPizza(t, w, 100, 150)
	})
	var kicks []event.ItemKicked
	event.Subscribe(r.bus, func(ev event.ItemKicked) { kicks = append(kicks, ev) })

	r.tap(t, input.Kick)
	v, err := ecs.Get(r.w, near1, component.VelocityComponent)
	if err != nil {
		t.Fatalf("kicked pizza has no velocity: %v", err)
	}
	if !near(v.X, 125) || !near(v.Y, 0) {
		t.Fatalf("velocity = %+v, want (125, 0)", v)
	}
	if f := ecs.MustGet(r.w, near1, component.FrictionComponent); *f != 420 {
		t.Fatalf("friction = %v", *f)
	}
	if ecs.Has(r.w, far, component.VelocityComponent) {
		t.Fatalf("pizza out of reach was kicked")
	}

	r.step(t, 1)
	if p := ecs.MustGet(r.w, near1, component.PositionComponent); p.X <= 130 {
		t.Fatalf("kicked pizza did not move: %+v", p)
	}
	if len(kicks) != 1 || kicks[0].Item != near1 || !near(kicks[0].Speed, 125) {
		t.Fatalf("kick events = %+v", kicks)
	}
}

func TestLookupMissReturnsError(t *testing.T) {
	w := ecs.NewWorld()
	kb := input.NewKeyboard()
	mustPlayer(t, w, 100, 100, 4)
	pizzas := []ecs.Entity{mustPizza(t, w, 110, 100), mustPizza(t, w, 100, 110)}

	// a kick formula that takes every pizza off the floor mid-loop
	strip := KickerFunc(func(ctx scripting.KickContext) scripting.KickResult {
		for _, p := range pizzas {
			ecs.Remove(w, p, component.PositionComponent)
		}
		return scripting.DefaultKick(ctx)
	})
	err := w.RegisterSystem(NewInteractSystem(kb, event.NewBus(), strip, InteractOptions{
		PickupRange: 20, Proximity: 40, MaxSpeed: 500, Friction: 420,
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	t.Cleanup(w.Shutdown)

	kb.Press(input.Kick)
	err = w.Execute(16 * time.Millisecond)
	if !errors.Is(err, ecs.ErrComponentNotFound) {
		t.Fatalf("execute = %v, want ErrComponentNotFound", err)
	}
}

func TestInteractDoesNotKick(t *testing.T) {
	var pizza ecs.Entity
	r := newRig(t, func(w *ecs.World) {
		mustPlayer(t, w, 100, 100, 1)
		pizza = mustPizza(t, w, 130, 100)
	})
	r.tap(t, input.Interact)
	if ecs.Has(r.w, pizza, component.VelocityComponent) {
		t.Fatalf("interact must only pick up")
	}
}

func TestPlayerAnimation(t *testing.T) {
	cases := []struct {
		name  string
		keys  []input.Action
		clip  string
		speed float64
	}{
		{"stopped", nil, "stopped", 0.1 / 6},
		{"left", []input.Action{input.MoveLeft}, "left", 0.1},
		{"right_wins_over_up", []input.Action{input.MoveRight, input.MoveUp}, "right", 0.1},
		{"up", []input.Action{input.MoveUp}, "up", 0.1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var player ecs.Entity
			r := newRig(t, func(w *ecs.World) { player = mustPlayer(t, w, 500, 500, 4) })
			for _, k := range c.keys {
				r.kb.Press(k)
			}
			r.step(t, 1)
			g := ecs.MustGet(r.w, player, component.GraphicsComponent)
			if g.Clip != c.clip || !near(g.AnimationSpeed, c.speed) {
				t.Fatalf("clip=%q speed=%v, want %q %v", g.Clip, g.AnimationSpeed, c.clip, c.speed)
			}
		})
	}
}

func TestGraphicsDetachesDestroyedEntities(t *testing.T) {
	var pizza ecs.Entity
	r := newRig(t, func(w *ecs.World) { pizza = mustPizza(t, w, 10, 10) })
	r.step(t, 1)
	if n := r.world.nodes[pizza]; n == nil || n.x != 10 || n.y != 10 {
		t.Fatalf("node = %+v", n)
	}
	r.w.RemoveEntity(pizza)
	r.step(t, 1)
	if _, ok := r.world.nodes[pizza]; !ok {
		t.Fatalf("node detached before the removal was published")
	}
	r.step(t, 1)
	if _, ok := r.world.nodes[pizza]; ok {
		t.Fatalf("destroyed pizza still attached")
	}
}

func TestSystemStateValidation(t *testing.T) {
	w := ecs.NewWorld()
	cases := []struct {
		name string
		sys  ecs.Runnable
	}{
		{"events_no_bus", NewEventsSystem(nil)},
		{"keyboard_zero_speed", NewKeyboardInputSystem(input.NewKeyboard(), 0, 2)},
		{"camera_no_camera", NewCameraSystem(nil, 800, 600)},
		{"graphics_no_layer", NewGraphicsSystem(nil)},
		{"interact_no_kicker", NewInteractSystem(input.NewKeyboard(), event.NewBus(), nil, InteractOptions{PickupRange: 1, Proximity: 1})},
		{"autosave_no_store", NewAutosaveSystem(event.NewBus(), AutosaveOptions{Every: time.Second, Level: "x"}, zap.NewNop())},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := w.RegisterSystem(c.sys); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
