package ecs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// World is the top-level ECS container. It owns the entity arena, every
// registered system with its queries, and the deferred removal list flushed
// at the end of each tick.
type World struct {
	pool      *entityPool
	sched     *scheduler
	queries   []*Query
	removing  []Entity
	buried    []Entity
	withAside map[Entity]struct{}
	tick      uint64
	executing bool
	shutdown  bool
	log       *zap.Logger
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for registration and reconciliation
// diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

func NewWorld(opts ...Option) *World {
	w := &World{
		pool:      newEntityPool(),
		sched:     newScheduler(),
		removing:  make([]Entity, 0, 64),
		withAside: make(map[Entity]struct{}),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CreateEntity returns a fresh entity with no components.
func (w *World) CreateEntity() Entity {
	return w.pool.create()
}

// RemoveEntity flags e for deletion at the end of the current tick. It stays
// in every query until then. Repeated calls and calls on unknown entities
// do nothing.
func (w *World) RemoveEntity(e Entity) {
	r := w.pool.lookup(e)
	if r == nil || r.state != Alive {
		return
	}
	r.state = Removing
	w.removing = append(w.removing, e)
}

// State reports the lifecycle stage of e.
func (w *World) State(e Entity) EntityState { return w.pool.state(e) }

// Alive reports whether e exists, including entities pending removal.
func (w *World) Alive(e Entity) bool {
	s := w.pool.state(e)
	return s == Alive || s == Removing
}

// Len is the number of alive or removing entities.
func (w *World) Len() int { return len(w.pool.live) }

// Entities returns a copy of every alive or removing entity.
func (w *World) Entities() []Entity { return w.pool.liveEntities() }

// Tick is the number of completed ticks.
func (w *World) Tick() uint64 { return w.tick }

// Systems lists registered system names in execution order.
func (w *World) Systems() []string { return w.sched.names() }

// RegisterSystem seeds the system's queries from the current entities,
// validates its state, runs its init hook and appends it to the execution
// order. Seeded members count as added for the next tick. A rejected
// system is not registered and holds no query.
func (w *World) RegisterSystem(r Runnable) error {
	if w.executing {
		return fmt.Errorf("register %s: world is executing", r.Name())
	}
	decls := r.Queries()
	sl := slot{sys: r, queries: make(map[string]*Query, len(decls))}
	built := make([]*Query, 0, len(decls))
	for _, decl := range decls {
		if _, dup := sl.queries[decl.Name]; dup {
			return fmt.Errorf("register %s: duplicate query %q", r.Name(), decl.Name)
		}
		q := newQuery(decl)
		for _, e := range w.pool.live {
			if rec := w.pool.lookup(e); rec != nil && q.matches(rec.mask) {
				q.enter(e)
			}
		}
		sl.queries[decl.Name] = q
		built = append(built, q)
	}

	// nothing is committed until init succeeds
	td, err := r.setup()
	if err != nil {
		return fmt.Errorf("register %s: %w", r.Name(), err)
	}
	w.queries = append(w.queries, built...)
	w.sched.add(sl, td)

	w.log.Debug("system registered",
		zap.String("system", r.Name()),
		zap.Int("queries", len(decls)),
		zap.Int("order", len(w.sched.slots)-1),
	)
	return nil
}

// Register registers systems in the given order, stopping at the first
// failure.
func (w *World) Register(systems ...Runnable) error {
	for _, s := range systems {
		if err := w.RegisterSystem(s); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs one tick: every system once in registration order, then
// removal reconciliation. A failing system aborts the tick before
// reconciliation and its error is returned.
func (w *World) Execute(delta time.Duration) error {
	if w.shutdown {
		return fmt.Errorf("execute: world is shut down")
	}
	w.executing = true
	ctx := &Context{World: w, Delta: delta}
	err := w.sched.tick(ctx)
	w.executing = false
	if err != nil {
		return fmt.Errorf("tick %d: %w", w.tick, err)
	}
	w.reconcile()
	return nil
}

// Shutdown runs every init teardown in reverse registration order. It is
// safe to call more than once.
func (w *World) Shutdown() {
	if w.shutdown {
		return
	}
	w.shutdown = true
	w.sched.shutdown()
	w.log.Debug("world shut down", zap.Uint64("ticks", w.tick))
}

// attach stores v under id and enters e into every query it now matches.
func (w *World) attach(e Entity, id ComponentID, v any) {
	r := w.pool.lookup(e)
	if r == nil || r.state != Alive {
		return
	}
	r.components[id] = v
	if r.mask.has(id) {
		return
	}
	r.mask.set(id)
	for _, q := range w.queries {
		if q.matches(r.mask) {
			q.enter(e)
		}
	}
}

// detach drops id from e, keeps the value aside and evicts e from queries
// that required it.
func (w *World) detach(e Entity, id ComponentID) bool {
	r := w.pool.lookup(e)
	if r == nil || r.state != Alive || !r.mask.has(id) {
		return false
	}
	w.setAside(e, r, id, r.components[id])
	delete(r.components, id)
	r.mask.unset(id)
	for _, q := range w.queries {
		if q.requires(id) {
			q.exit(e)
		}
	}
	return true
}

func (w *World) setAside(e Entity, r *record, id ComponentID, v any) {
	if r.detached == nil {
		r.detached = make(map[ComponentID]detachedValue, 4)
	}
	r.detached[id] = detachedValue{value: v, tick: w.tick}
	w.withAside[e] = struct{}{}
}

// reconcile purges flagged entities, publishes exits, frees last tick's
// tombstones and advances the tick counter.
func (w *World) reconcile() {
	for _, e := range w.buried {
		w.pool.free(e)
		delete(w.withAside, e)
	}
	w.buried = w.buried[:0]

	for _, e := range w.removing {
		r := w.pool.lookup(e)
		if r == nil || r.state != Removing {
			continue
		}
		for id, v := range r.components {
			w.setAside(e, r, id, v)
		}
		for _, q := range w.queries {
			q.exit(e)
		}
		w.pool.bury(e)
		w.buried = append(w.buried, e)
	}
	purged := len(w.removing)
	w.removing = w.removing[:0]

	for _, q := range w.queries {
		q.reconcile()
	}

	w.tick++
	for e := range w.withAside {
		r := w.pool.lookup(e)
		if r == nil {
			delete(w.withAside, e)
			continue
		}
		for id, d := range r.detached {
			if d.tick+1 < w.tick {
				delete(r.detached, id)
			}
		}
		if len(r.detached) == 0 {
			r.detached = nil
			delete(w.withAside, e)
		}
	}

	if purged > 0 {
		w.log.Debug("entities purged",
			zap.Uint64("tick", w.tick),
			zap.Int("count", purged),
			zap.Int("alive", len(w.pool.live)),
		)
	}
}

// Each calls fn for every alive or removing entity.
func (w *World) Each(fn func(Entity)) {
	for _, e := range w.pool.liveEntities() {
		fn(e)
	}
}
