package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/config"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/data"
	"github.com/pizzakick/pizzakick/internal/input"
	"github.com/pizzakick/pizzakick/internal/persist"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testLevel = `name: test
grid: |
  1111111
  19   21
  1111111
`

const tick = 100 * time.Millisecond

func testConfig(t *testing.T, level string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Game.Seed = 1
	if level != "" {
		path := filepath.Join(t.TempDir(), "level.yaml")
		writeFile(t, path, level)
		cfg.Game.Level = path
	}
	return cfg
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	g, err := New(cfg, zap.NewNop(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func step(t *testing.T, g *Game) {
	t.Helper()
	if err := g.Step(tick); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func playerPos(t *testing.T, g *Game) component.Vec2 {
	t.Helper()
	p, err := ecs.Get(g.World(), g.Player(), component.PositionComponent)
	if err != nil {
		t.Fatalf("player position: %v", err)
	}
	return *p
}

func TestNewAssemblesDefaultLevel(t *testing.T) {
	g := newGame(t, testConfig(t, ""), Options{})

	want := []string{"events", "keyboardInput", "physics", "camera", "interact",
		"drop", "inventoryGraphics", "playerAnimation", "graphics"}
	got := g.World().Systems()
	if len(got) != len(want) {
		t.Fatalf("systems = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("systems = %v, want %v", got, want)
		}
	}

	s := g.Spawned()
	if s.Walls != 127 || s.Pizzas != 26 {
		t.Fatalf("spawned = %+v", s)
	}
	if g.World().Len() != 127+26+1 {
		t.Fatalf("entities = %d", g.World().Len())
	}
	if held, capacity := g.Carried(); held != 0 || capacity != 4 {
		t.Fatalf("carried = %d/%d", held, capacity)
	}
}

func TestNewRejectsBadBindings(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Bindings["jump"] = "J"
	if _, err := New(cfg, zap.NewNop(), Options{}); err == nil {
		t.Fatalf("expected an error for an unknown action")
	}
}

func TestStepMovesPlayerAndSyncsScene(t *testing.T) {
	g := newGame(t, testConfig(t, testLevel), Options{})

	g.Keyboard.Press(input.MoveRight)
	step(t, g)

	if p := playerPos(t, g); p.X != 85 || p.Y != 75 {
		t.Fatalf("player = %+v, want (85, 75)", p)
	}
	if g.Scene.World.Len() != g.World().Len() {
		t.Fatalf("scene has %d visuals for %d entities", g.Scene.World.Len(), g.World().Len())
	}
	n, ok := g.Scene.World.Get(g.Player())
	if !ok || n.X != 85 || n.Y != 75 {
		t.Fatalf("player node = %+v", n)
	}
	if x, y := g.Scene.Offset(); x != 512-85 || y != 384-75 {
		t.Fatalf("offset = (%v, %v)", x, y)
	}
}

func TestPickUpMovesItemToHUD(t *testing.T) {
	g := newGame(t, testConfig(t, testLevel), Options{})
	pizza, err := data.AddPizza(g.World(), 80, 75)
	if err != nil {
		t.Fatalf("AddPizza: %v", err)
	}

	g.Keyboard.Press(input.Interact)
	step(t, g)

	if held, _ := g.Carried(); held != 1 {
		t.Fatalf("held = %d, want 1", held)
	}
	if _, ok := g.Scene.HUD.Get(pizza); !ok {
		t.Fatalf("carried pizza missing from HUD")
	}
	if _, ok := g.Scene.World.Get(pizza); ok {
		t.Fatalf("carried pizza still drawn in the world")
	}
}

func TestReloadLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig(t, testLevel)
	g, err := New(cfg, zap.New(core), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(g.Close)
	step(t, g)
	old := g.World()

	writeFile(t, cfg.Game.Level, "name: test\ngrid: |\n  11111\n  19221\n  11111\n")
	if err := g.ReloadLevel(cfg.Game.Level); err != nil {
		t.Fatalf("ReloadLevel: %v", err)
	}
	if g.World() == old {
		t.Fatalf("world not replaced")
	}
	if g.Spawned().Pizzas != 2 {
		t.Fatalf("pizzas = %d, want 2", g.Spawned().Pizzas)
	}
	if n := g.Keyboard.Subscribers(); n != 3 {
		t.Fatalf("keyboard subscribers = %d, want 3", n)
	}
	if g.Scene.World.Len() != 0 {
		t.Fatalf("scene not reset")
	}

	step(t, g)
	if logs.FilterMessage("level reloaded").Len() != 1 {
		t.Fatalf("level reload not logged")
	}

	if err := g.ReloadLevel(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing level")
	}
	if g.Spawned().Pizzas != 2 || g.Keyboard.Subscribers() != 3 {
		t.Fatalf("failed reload disturbed the running level")
	}
}

type fakeSnapshots struct {
	latest *persist.Snapshot
	saved  []persist.Snapshot
}

func (f *fakeSnapshots) Save(_ context.Context, s persist.Snapshot) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSnapshots) Latest(_ context.Context, level string) (*persist.Snapshot, error) {
	if f.latest == nil || f.latest.Level != level {
		return nil, nil
	}
	return f.latest, nil
}

func TestRestoreAndFinalSave(t *testing.T) {
	store := &fakeSnapshots{latest: &persist.Snapshot{Level: "test", PlayerX: 200, PlayerY: 80}}
	g, err := New(testConfig(t, testLevel), zap.NewNop(), Options{Snapshots: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	systems := g.World().Systems()
	if systems[len(systems)-1] != "autosave" {
		t.Fatalf("systems = %v", systems)
	}
	if p := playerPos(t, g); p.X != 200 || p.Y != 80 {
		t.Fatalf("restored player = %+v", p)
	}

	step(t, g)
	g.Close()
	if len(store.saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(store.saved))
	}
	if s := store.saved[0]; s.Level != "test" || s.PlayerX != 200 || s.Tick != 1 {
		t.Fatalf("saved = %+v", s)
	}
}

func TestZeroAutosaveIntervalSavesOnClose(t *testing.T) {
	cfg := testConfig(t, testLevel)
	cfg.Database.AutosaveEvery = 0
	store := &fakeSnapshots{}
	g, err := New(cfg, zap.NewNop(), Options{Snapshots: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		step(t, g)
	}
	if len(store.saved) != 0 {
		t.Fatalf("saves = %d before close, want 0", len(store.saved))
	}
	g.Close()
	if len(store.saved) != 1 || store.saved[0].Tick != 3 {
		t.Fatalf("saved = %+v, want one snapshot at tick 3", store.saved)
	}
}

func TestWatcherReloadsLevel(t *testing.T) {
	cfg := testConfig(t, testLevel)
	cfg.Dev.Watch = true
	cfg.Dev.WatchDebounce = 20 * time.Millisecond
	g := newGame(t, cfg, Options{})

	writeFile(t, cfg.Game.Level, "name: test\ngrid: |\n  11111\n  19221\n  11111\n")
	deadline := time.Now().Add(3 * time.Second)
	for g.Spawned().Pizzas != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("level change not picked up")
		}
		time.Sleep(20 * time.Millisecond)
		step(t, g)
	}
}
