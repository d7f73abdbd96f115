package game

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/config"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/core/event"
	"github.com/pizzakick/pizzakick/internal/data"
	"github.com/pizzakick/pizzakick/internal/input"
	"github.com/pizzakick/pizzakick/internal/persist"
	"github.com/pizzakick/pizzakick/internal/scene"
	"github.com/pizzakick/pizzakick/internal/scripting"
	"github.com/pizzakick/pizzakick/internal/system"
	"github.com/pizzakick/pizzakick/internal/watch"
	"go.uber.org/zap"
)

const restoreTimeout = 5 * time.Second

// Snapshots is the persistence the game needs for autosave and restore.
type Snapshots interface {
	system.SnapshotStore
	Latest(ctx context.Context, level string) (*persist.Snapshot, error)
}

// Options carries optional collaborators. A nil Snapshots disables autosave
// and restore; a nil Events disables the item event log.
type Options struct {
	Snapshots Snapshots
	Events    system.EventLog
}

// Game owns one running level: its world, bus and scene, plus the pieces
// that outlive a level reload (keyboard, scripts, rng).
type Game struct {
	cfg  *config.Config
	log  *zap.Logger
	opts Options

	Keyboard *input.Keyboard
	Bindings input.Bindings
	Scene    *scene.Scene

	engine  *scripting.Engine
	watcher *watch.Watcher
	rng     *rand.Rand

	world     *ecs.World
	bus       *event.Bus
	level     *data.Level
	levelPath string
	spawned   data.Spawned
}

func New(cfg *config.Config, log *zap.Logger, opts Options) (*Game, error) {
	bindings, err := input.NewBindings(cfg.Bindings)
	if err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}

	lvl := data.DefaultLevel()
	if cfg.Game.Level != "" {
		if lvl, err = data.LoadLevel(cfg.Game.Level); err != nil {
			return nil, err
		}
	}

	engine, err := scripting.NewEngine(cfg.Game.ScriptsDir, log.Named("script"))
	if err != nil {
		return nil, fmt.Errorf("scripts: %w", err)
	}

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		cfg:       cfg,
		log:       log,
		opts:      opts,
		Keyboard:  input.NewKeyboard(),
		Bindings:  bindings,
		Scene:     scene.New(),
		engine:    engine,
		rng:       rand.New(rand.NewSource(seed)),
		levelPath: cfg.Game.Level,
	}
	if err := g.build(lvl); err != nil {
		engine.Close()
		return nil, err
	}

	if cfg.Dev.Watch {
		if err := g.startWatcher(); err != nil {
			g.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}
	}
	return g, nil
}

// build creates a fresh world for lvl with its systems and entities.
func (g *Game) build(lvl *data.Level) error {
	world := ecs.NewWorld(ecs.WithLogger(g.log.Named("ecs")))
	bus := event.NewBus()
	g.subscribeLogging(bus)

	c := g.cfg
	systems := []ecs.Runnable{
		system.NewEventsSystem(bus),
		system.NewKeyboardInputSystem(g.Keyboard, c.Player.Speed, c.Player.RunModifier),
		system.NewPhysicsSystem(),
		system.NewCameraSystem(g.Scene, float64(c.Window.Width), float64(c.Window.Height)),
		system.NewInteractSystem(g.Keyboard, bus, g.engine, system.InteractOptions{
			PickupRange: c.Player.PickupRange,
			Proximity:   c.Kick.Proximity,
			MaxSpeed:    c.Kick.MaxSpeed,
			Friction:    c.Kick.Friction,
		}),
		system.NewDropSystem(g.Keyboard, bus),
		system.NewInventoryGraphicsSystem(g.Scene.HUD),
		system.NewPlayerAnimationSystem(),
		system.NewGraphicsSystem(g.Scene.World),
	}
	if g.opts.Snapshots != nil {
		systems = append(systems, system.NewAutosaveSystem(bus, system.AutosaveOptions{
			Store:  g.opts.Snapshots,
			Events: g.opts.Events,
			Every:  c.Database.AutosaveEvery,
			Level:  lvl.Name,
		}, g.log.Named("autosave")))
	}
	if err := world.Register(systems...); err != nil {
		world.Shutdown()
		return err
	}

	spawned, err := data.Spawn(world, lvl, g.rng, data.SpawnOptions{MaxItems: c.Player.MaxItems})
	if err != nil {
		world.Shutdown()
		return fmt.Errorf("spawn level %s: %w", lvl.Name, err)
	}

	g.world, g.bus, g.level, g.spawned = world, bus, lvl, spawned
	g.restore()

	g.log.Info("level loaded",
		zap.String("level", lvl.Name),
		zap.Int("walls", spawned.Walls),
		zap.Int("pizzas", spawned.Pizzas),
		zap.Strings("systems", world.Systems()),
	)
	return nil
}

// restore moves the player to the last saved position for this level.
func (g *Game) restore() {
	if g.opts.Snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	snap, err := g.opts.Snapshots.Latest(ctx, g.level.Name)
	if err != nil {
		g.log.Warn("snapshot restore failed", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}
	p, err := ecs.Get(g.world, g.spawned.Player, component.PositionComponent)
	if err != nil {
		return
	}
	p.X, p.Y = snap.PlayerX, snap.PlayerY
	g.log.Info("player restored",
		zap.Float64("x", p.X),
		zap.Float64("y", p.Y),
		zap.Time("saved_at", snap.SavedAt),
	)
}

func (g *Game) subscribeLogging(bus *event.Bus) {
	log := g.log.Named("event")
	event.Subscribe(bus, func(ev event.ItemPickedUp) {
		log.Debug("item picked up", zap.Stringer("item", ev.Item), zap.Int("carried", ev.Count))
	})
	event.Subscribe(bus, func(ev event.ItemDropped) {
		log.Debug("item dropped", zap.Stringer("item", ev.Item), zap.Int("carried", ev.Count))
	})
	event.Subscribe(bus, func(ev event.ItemKicked) {
		log.Debug("item kicked", zap.Stringer("item", ev.Item), zap.Float64("speed", ev.Speed))
	})
	event.Subscribe(bus, func(ev event.LevelReloaded) {
		log.Info("level reloaded", zap.String("path", ev.Path), zap.Int("entities", ev.Entities))
	})
}

func (g *Game) startWatcher() error {
	var dirs []string
	if g.levelPath != "" {
		dirs = append(dirs, filepath.Dir(g.levelPath))
	}
	if dir := g.engine.ScriptsDir(); dir != "" {
		dirs = append(dirs, dir)
	}
	if len(dirs) == 0 {
		g.log.Info("hot reload idle: built-in level and scripts")
		return nil
	}
	w, err := watch.New(g.cfg.Dev.WatchDebounce, g.log.Named("watch"), dirs...)
	if err != nil {
		return err
	}
	g.watcher = w
	return nil
}

// Step applies pending file changes, then runs one tick.
func (g *Game) Step(delta time.Duration) error {
	if g.watcher != nil {
		for _, c := range g.watcher.Drain() {
			g.apply(c)
		}
	}
	if err := g.world.Execute(delta); err != nil {
		return err
	}
	g.Scene.World.Animate()
	return nil
}

func (g *Game) apply(c watch.Change) {
	switch c.Kind {
	case watch.Level:
		if g.levelPath == "" || !samePath(c.Path, g.levelPath) {
			return
		}
		if err := g.ReloadLevel(g.levelPath); err != nil {
			g.log.Error("level reload failed", zap.String("path", c.Path), zap.Error(err))
		}
	case watch.Script:
		if err := g.engine.Reload(); err != nil {
			g.log.Error("script reload failed", zap.String("path", c.Path), zap.Error(err))
		}
	}
}

// ReloadLevel replaces the running world with a fresh spawn of the level at
// path. The running world is kept when the file does not load.
func (g *Game) ReloadLevel(path string) error {
	lvl, err := data.LoadLevel(path)
	if err != nil {
		return err
	}
	old := g.world
	if err := g.build(lvl); err != nil {
		return err
	}
	old.Shutdown()
	g.Scene.Reset()
	g.levelPath = path
	event.Emit(g.bus, event.LevelReloaded{Path: path, Entities: g.world.Len()})
	return nil
}

// ReloadScripts reloads the kick scripts.
func (g *Game) ReloadScripts() error { return g.engine.Reload() }

func (g *Game) World() *ecs.World { return g.world }
func (g *Game) Level() *data.Level { return g.level }
func (g *Game) Player() ecs.Entity { return g.spawned.Player }

// Spawned reports what the current level created.
func (g *Game) Spawned() data.Spawned { return g.spawned }

// Carried reports the items the player holds and the inventory capacity.
func (g *Game) Carried() (held, capacity int) {
	inv, err := ecs.Get(g.world, g.spawned.Player, component.InventoryComponent)
	if err != nil {
		return 0, 0
	}
	return len(inv.Items), inv.MaxItems
}

// Close shuts the world down (running the final autosave), then closes the
// watcher and the script VM.
func (g *Game) Close() {
	g.world.Shutdown()
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.engine.Close()
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
