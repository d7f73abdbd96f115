package ecs

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ComponentID identifies a component kind. IDs start at 0 and are unique
// for the life of the process.
type ComponentID uint32

// MaxKinds is the number of distinct component kinds a process may declare.
const MaxKinds = 256

var (
	ErrComponentNotFound = errors.New("ecs: entity does not have component")
	ErrNotRemoved        = errors.New("ecs: no removed component retained")
	ErrNilComponent      = errors.New("ecs: component is nil")
	ErrSchema            = errors.New("ecs: schema validation failed")
)

var nextComponentID atomic.Int32

// Kinder is the untyped view of a component kind used in query declarations.
type Kinder interface {
	ID() ComponentID
	Name() string
}

// Kind declares one component shape. Kinds are compared by identity: two
// kinds over the same Go type are still different kinds.
type Kind[T any] struct {
	id     ComponentID
	name   string
	schema Schema[T]
}

// NewKind declares a component kind. It is meant to be called once per kind
// from a package-level var. A nil schema accepts every value.
func NewKind[T any](name string, schema Schema[T]) *Kind[T] {
	id := nextComponentID.Add(1) - 1
	if id >= MaxKinds {
		panic(fmt.Sprintf("ecs: cannot declare component %q: maximum number of kinds (%d) reached", name, MaxKinds))
	}
	if schema == nil {
		schema = Any[T]()
	}
	return &Kind[T]{id: ComponentID(id), name: name, schema: schema}
}

func (k *Kind[T]) ID() ComponentID { return k.id }
func (k *Kind[T]) Name() string    { return k.name }

func (k *Kind[T]) String() string {
	return k.name + "#" + fmt.Sprint(k.id)
}

// validate runs the kind's schema over v.
func (k *Kind[T]) validate(v *T) error {
	if v == nil {
		return fmt.Errorf("%s: %w", k.name, ErrNilComponent)
	}
	if err := k.schema.Validate(*v); err != nil {
		return fmt.Errorf("%s: %w: %w", k.name, ErrSchema, err)
	}
	return nil
}

// Add attaches v to e under kind, replacing any previous value. The pointer
// is stored as-is, so Get returns the same pointer. Adding to an entity that
// is being removed or no longer exists does nothing.
func Add[T any](w *World, e Entity, kind *Kind[T], v *T) error {
	if err := kind.validate(v); err != nil {
		return fmt.Errorf("add to entity %s: %w", e, err)
	}
	w.attach(e, kind.id, v)
	return nil
}

// Get returns the value of kind attached to e. It fails with
// ErrComponentNotFound when e does not currently hold the kind.
func Get[T any](w *World, e Entity, kind *Kind[T]) (*T, error) {
	r := w.pool.lookup(e)
	if r != nil && r.components != nil {
		if v, ok := r.components[kind.id]; ok {
			return v.(*T), nil
		}
	}
	return nil, fmt.Errorf("get %s from entity %s: %w", kind.name, e, ErrComponentNotFound)
}

// MustGet is Get for callers whose query already guarantees the kind.
func MustGet[T any](w *World, e Entity, kind *Kind[T]) *T {
	v, err := Get(w, e, kind)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether e currently holds kind.
func Has[T any](w *World, e Entity, kind *Kind[T]) bool {
	r := w.pool.lookup(e)
	return r != nil && r.mask.has(kind.id)
}

// Remove detaches kind from e and reports whether anything was detached.
// The detached value stays readable through GetRemoved while the exit is
// being reported.
func Remove[T any](w *World, e Entity, kind *Kind[T]) bool {
	return w.detach(e, kind.id)
}

// GetRemoved returns the last value of kind detached from e, either by
// Remove or because e was destroyed. Values are retained for the tick they
// were detached in and the tick after it.
func GetRemoved[T any](w *World, e Entity, kind *Kind[T]) (*T, error) {
	r := w.pool.lookup(e)
	if r != nil && r.detached != nil {
		if d, ok := r.detached[kind.id]; ok && d.tick+1 >= w.tick {
			return d.value.(*T), nil
		}
	}
	return nil, fmt.Errorf("get removed %s from entity %s: %w", kind.name, e, ErrNotRemoved)
}
