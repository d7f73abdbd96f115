package ecs

// QueryDecl names a set of required component kinds.
type QueryDecl struct {
	Name  string
	Kinds []Kinder
}

// Require declares a query over the given kinds. Order does not matter for
// matching.
func Require(name string, kinds ...Kinder) QueryDecl {
	return QueryDecl{Name: name, Kinds: kinds}
}

func (d QueryDecl) mask() bitmask256 {
	var m bitmask256
	for _, k := range d.Kinds {
		m.set(k.ID())
	}
	return m
}

// entitySet is an insertion-ordered set with swap-removal.
type entitySet struct {
	dense []Entity
	pos   map[Entity]int
}

func newEntitySet() entitySet {
	return entitySet{pos: make(map[Entity]int)}
}

func (s *entitySet) has(e Entity) bool {
	_, ok := s.pos[e]
	return ok
}

func (s *entitySet) add(e Entity) bool {
	if _, ok := s.pos[e]; ok {
		return false
	}
	s.pos[e] = len(s.dense)
	s.dense = append(s.dense, e)
	return true
}

func (s *entitySet) remove(e Entity) bool {
	i, ok := s.pos[e]
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[i] = moved
	s.pos[moved] = i
	s.dense = s.dense[:last]
	delete(s.pos, e)
	return true
}

func (s *entitySet) clear() {
	s.dense = s.dense[:0]
	clear(s.pos)
}

func (s *entitySet) len() int { return len(s.dense) }

func (s *entitySet) slice() []Entity {
	out := make([]Entity, len(s.dense))
	copy(out, s.dense)
	return out
}

// Query is the live subscription for one declared query of one system.
//
// Results is the current membership. Added holds entities that entered
// since the last reconciliation and are still members. Removed holds the
// entities that left between the previous two reconciliations; it is
// published at the end of a tick and read during the next one.
type Query struct {
	name string
	mask bitmask256

	results entitySet
	added   entitySet
	removed entitySet

	// settled is membership as of the last reconciliation. leaving
	// collects settled members that were evicted or destroyed since.
	settled entitySet
	leaving entitySet
}

func newQuery(decl QueryDecl) *Query {
	return &Query{
		name:    decl.Name,
		mask:    decl.mask(),
		results: newEntitySet(),
		added:   newEntitySet(),
		removed: newEntitySet(),
		settled: newEntitySet(),
		leaving: newEntitySet(),
	}
}

func (q *Query) Name() string { return q.name }

// Results returns a copy of the current membership.
func (q *Query) Results() []Entity { return q.results.slice() }

// Added returns a copy of the entities that entered this tick.
func (q *Query) Added() []Entity { return q.added.slice() }

// Removed returns a copy of the entities that left during the last
// completed tick.
func (q *Query) Removed() []Entity { return q.removed.slice() }

// Len is the number of current members.
func (q *Query) Len() int { return q.results.len() }

// Contains reports whether e is a current member.
func (q *Query) Contains(e Entity) bool { return q.results.has(e) }

// First returns any current member, for queries expected to match a single
// entity such as the player.
func (q *Query) First() (Entity, bool) {
	if q.results.len() == 0 {
		return 0, false
	}
	return q.results.dense[0], true
}

// IsAdded reports whether e entered q this tick.
func IsAdded(q *Query, e Entity) bool { return q.added.has(e) }

// IsRemoved reports whether e left q during the last completed tick.
func IsRemoved(q *Query, e Entity) bool { return q.removed.has(e) }

func (q *Query) matches(m bitmask256) bool { return m.contains(q.mask) }

func (q *Query) requires(id ComponentID) bool { return q.mask.has(id) }

// enter inserts e as a member. It counts as added only if it was not a
// member at the last reconciliation.
func (q *Query) enter(e Entity) {
	if !q.results.add(e) {
		return
	}
	if q.settled.has(e) {
		q.leaving.remove(e)
		return
	}
	q.added.add(e)
}

// exit evicts e from the current membership.
func (q *Query) exit(e Entity) {
	if !q.results.remove(e) {
		return
	}
	if q.settled.has(e) {
		q.leaving.add(e)
		return
	}
	q.added.remove(e)
}

// reconcile publishes this tick's exits, folds this tick's entries into
// the settled membership and clears the per-tick markers.
func (q *Query) reconcile() {
	q.removed.clear()
	for _, e := range q.leaving.dense {
		q.removed.add(e)
		q.settled.remove(e)
	}
	q.leaving.clear()
	for _, e := range q.added.dense {
		q.settled.add(e)
	}
	q.added.clear()
}
