package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pizzakick/pizzakick/internal/component"
	"github.com/pizzakick/pizzakick/internal/core/ecs"
	"github.com/pizzakick/pizzakick/internal/core/event"
	"github.com/pizzakick/pizzakick/internal/persist"
)

// SnapshotStore persists play-session snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, s persist.Snapshot) error
}

// EventLog persists batches of item events.
type EventLog interface {
	WriteBatch(ctx context.Context, events []persist.ItemEvent) error
}

const (
	saveTimeout = 5 * time.Second

	// DefaultMaxPending bounds the item events kept while the event log is
	// unreachable. The oldest are dropped first.
	DefaultMaxPending = 1024
)

type AutosaveState struct {
	Store  SnapshotStore `validate:"required"`
	Events EventLog      // optional
	Bus    *event.Bus    `validate:"required"`
	Every  time.Duration `validate:"gte=0"` // 0 = only the final save
	Level  string        `validate:"required"`
	Log    *zap.Logger   `validate:"required"`

	MaxPending int `validate:"gt=0"`

	world   *ecs.World
	player  ecs.Entity
	elapsed time.Duration
	pending []persist.ItemEvent
	dropped int
}

// autosaveSystem periodically saves the player's position and carried item
// count, and flushes the item event log. A failed save is logged and
// retried on the next interval; it never aborts the tick. Its teardown
// performs a final save, which is the only one when Every is zero.
var autosaveSystem = ecs.NewSystem[AutosaveState]("autosave", ecs.Struct[AutosaveState](),
	[]ecs.QueryDecl{
		ecs.Require("players", component.PositionComponent, component.PlayerControlledComponent, component.InventoryComponent),
	},
	func(ctx *ecs.Context, s *AutosaveState) error {
		s.world = ctx.World
		if p, ok := ctx.Query("players").First(); ok {
			s.player = p
		}
		if s.Every == 0 {
			return nil
		}
		s.elapsed += ctx.Delta
		if s.elapsed < s.Every {
			return nil
		}
		s.elapsed = 0
		s.save()
		return nil
	},
	func(s *AutosaveState) (ecs.Teardown, error) {
		event.Subscribe(s.Bus, func(ev event.ItemPickedUp) { s.record("pickup", ev.Item, 0) })
		event.Subscribe(s.Bus, func(ev event.ItemDropped) { s.record("drop", ev.Item, 0) })
		event.Subscribe(s.Bus, func(ev event.ItemKicked) { s.record("kick", ev.Item, ev.Speed) })
		return s.save, nil
	})

func (s *AutosaveState) record(kind string, item ecs.Entity, speed float64) {
	if s.Events == nil || s.world == nil {
		return
	}
	ev := persist.ItemEvent{Kind: kind, Item: uint64(item), Tick: s.world.Tick(), Speed: speed}
	// carried items have no position of their own
	if p, err := ecs.Get(s.world, item, component.PositionComponent); err == nil {
		ev.X, ev.Y = p.X, p.Y
	} else if p, err := ecs.Get(s.world, s.player, component.PositionComponent); err == nil {
		ev.X, ev.Y = p.X, p.Y
	}
	if n := len(s.pending) - s.MaxPending + 1; n > 0 {
		s.pending = append(s.pending[:0], s.pending[n:]...)
		s.dropped += n
	}
	s.pending = append(s.pending, ev)
}

// snapshot captures the current player state. It reports false before the
// first tick or when there is no player.
func (s *AutosaveState) snapshot() (persist.Snapshot, bool) {
	if s.world == nil || !s.world.Alive(s.player) {
		return persist.Snapshot{}, false
	}
	p, err := ecs.Get(s.world, s.player, component.PositionComponent)
	if err != nil {
		return persist.Snapshot{}, false
	}
	snap := persist.Snapshot{Level: s.Level, Tick: s.world.Tick(), PlayerX: p.X, PlayerY: p.Y}
	if inv, err := ecs.Get(s.world, s.player, component.InventoryComponent); err == nil {
		snap.ItemsHeld = len(inv.Items)
	}
	return snap, true
}

func (s *AutosaveState) save() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if snap, ok := s.snapshot(); ok {
		if err := s.Store.Save(ctx, snap); err != nil {
			s.Log.Error("autosave snapshot failed", zap.Error(err))
		} else {
			s.Log.Debug("autosave snapshot", zap.Uint64("tick", snap.Tick), zap.Int("items", snap.ItemsHeld))
		}
	}
	if s.dropped > 0 {
		s.Log.Warn("autosave event log dropped events", zap.Int("dropped", s.dropped), zap.Int("kept", len(s.pending)))
		s.dropped = 0
	}
	if s.Events != nil && len(s.pending) > 0 {
		if err := s.Events.WriteBatch(ctx, s.pending); err != nil {
			s.Log.Error("autosave event log failed", zap.Error(err), zap.Int("pending", len(s.pending)))
			return
		}
		s.pending = s.pending[:0]
	}
}

// AutosaveOptions configures NewAutosaveSystem.
type AutosaveOptions struct {
	Store  SnapshotStore
	Events EventLog
	Every  time.Duration
	Level  string

	MaxPending int // 0 = DefaultMaxPending
}

func NewAutosaveSystem(bus *event.Bus, opts AutosaveOptions, log *zap.Logger) ecs.Runnable {
	if opts.MaxPending == 0 {
		opts.MaxPending = DefaultMaxPending
	}
	return autosaveSystem.With(AutosaveState{
		Store:  opts.Store,
		Events: opts.Events,
		Bus:    bus,
		Every:  opts.Every,
		Level:  opts.Level,
		Log:    log,

		MaxPending: opts.MaxPending,
	})
}
