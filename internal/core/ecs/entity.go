package ecs

import "strconv"

// Entity encodes a 32-bit arena index in the lower bits and a 32-bit
// generation in the upper bits. Generation increments when the slot is freed
// so stale handles stop resolving.
type Entity uint64

func newEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

func (e Entity) Index() uint32      { return uint32(e) }
func (e Entity) Generation() uint32 { return uint32(e >> 32) }
func (e Entity) IsZero() bool       { return e == 0 }

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.Index()), 10) + "v" + strconv.FormatUint(uint64(e.Generation()), 10)
}

// EntityState is the lifecycle stage of an entity handle.
type EntityState uint8

const (
	Destroyed EntityState = iota // unknown, purged, or stale handle
	Alive
	Removing // flagged by RemoveEntity, purged at end of tick
)

func (s EntityState) String() string {
	switch s {
	case Alive:
		return "alive"
	case Removing:
		return "removing"
	default:
		return "destroyed"
	}
}

// record is the per-entity storage slot in the world arena.
type record struct {
	generation uint32
	state      EntityState
	mask       bitmask256
	components map[ComponentID]any

	// detached holds values dropped by Remove or by destruction, stamped
	// with the tick they left in.
	detached map[ComponentID]detachedValue
}

type detachedValue struct {
	value any
	tick  uint64
}

// entityPool manages record allocation with generational indices and a free
// list. Index 0 is reserved so the zero Entity never resolves.
type entityPool struct {
	records  []record
	freeList []uint32
	live     []Entity
	livePos  map[Entity]int
}

func newEntityPool() *entityPool {
	return &entityPool{
		records:  make([]record, 1, 1024),
		freeList: make([]uint32, 0, 256),
		live:     make([]Entity, 0, 1024),
		livePos:  make(map[Entity]int, 1024),
	}
}

func (p *entityPool) create() Entity {
	var idx uint32
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else {
		idx = uint32(len(p.records))
		p.records = append(p.records, record{generation: 1})
	}
	r := &p.records[idx]
	r.state = Alive
	r.mask = bitmask256{}
	r.components = make(map[ComponentID]any, 8)
	r.detached = nil

	e := newEntity(idx, r.generation)
	p.livePos[e] = len(p.live)
	p.live = append(p.live, e)
	return e
}

// lookup returns the record for e if the handle is current, including
// entities that are tombstoned but not yet freed.
func (p *entityPool) lookup(e Entity) *record {
	idx := e.Index()
	if idx == 0 || int(idx) >= len(p.records) {
		return nil
	}
	r := &p.records[idx]
	if r.generation != e.Generation() {
		return nil
	}
	return r
}

// state reports the lifecycle stage of e.
func (p *entityPool) state(e Entity) EntityState {
	r := p.lookup(e)
	if r == nil {
		return Destroyed
	}
	return r.state
}

// bury moves e out of the live set. Its record keeps the detached values
// until free is called.
func (p *entityPool) bury(e Entity) {
	r := p.lookup(e)
	if r == nil {
		return
	}
	r.state = Destroyed
	r.mask = bitmask256{}
	r.components = nil

	pos, ok := p.livePos[e]
	if !ok {
		return
	}
	last := len(p.live) - 1
	moved := p.live[last]
	p.live[pos] = moved
	p.livePos[moved] = pos
	p.live = p.live[:last]
	delete(p.livePos, e)
}

// free releases the slot of a buried entity for reuse.
func (p *entityPool) free(e Entity) {
	r := p.lookup(e)
	if r == nil || r.state != Destroyed {
		return
	}
	r.detached = nil
	r.generation++
	if r.generation == 0 {
		r.generation = 1
	}
	p.freeList = append(p.freeList, e.Index())
}

// liveEntities returns a copy of every alive or removing entity in
// creation order, modulo swap-removal.
func (p *entityPool) liveEntities() []Entity {
	out := make([]Entity, len(p.live))
	copy(out, p.live)
	return out
}
