package ecs

import (
	"fmt"
	"time"
)

// Teardown undoes what an init hook set up. The World runs teardowns on
// Shutdown and never on its own.
type Teardown func()

// ExecuteFunc is a system body. It receives the tick context and the
// system's private state.
type ExecuteFunc[S any] func(ctx *Context, state *S) error

// InitFunc runs once when the system is registered. It may return a
// teardown, or nil. A teardown returned together with an error is run
// immediately.
type InitFunc[S any] func(state *S) (Teardown, error)

// Context is what a system sees while it executes.
type Context struct {
	World   *World
	Delta   time.Duration
	queries map[string]*Query
}

// Query returns the named query declared by the running system. Asking for
// an undeclared name is a programming error and panics.
func (c *Context) Query(name string) *Query {
	q, ok := c.queries[name]
	if !ok {
		panic(fmt.Sprintf("ecs: query %q not declared", name))
	}
	return q
}

// System declares a system: the shape of its state, its queries and its
// body. It holds no state itself; bind one with With.
type System[S any] struct {
	name    string
	schema  Schema[S]
	queries []QueryDecl
	execute ExecuteFunc[S]
	init    InitFunc[S]
}

// NewSystem declares a system. schema and init may be nil.
func NewSystem[S any](name string, schema Schema[S], queries []QueryDecl, execute ExecuteFunc[S], init InitFunc[S]) *System[S] {
	if schema == nil {
		schema = Any[S]()
	}
	return &System[S]{
		name:    name,
		schema:  schema,
		queries: queries,
		execute: execute,
		init:    init,
	}
}

func (s *System[S]) Name() string { return s.name }

// With binds initial state to the system for registration.
func (s *System[S]) With(state S) Runnable {
	return &instance[S]{sys: s, state: state}
}

// Runnable is a system bound to its state, ready for World.RegisterSystem.
type Runnable interface {
	Name() string
	Queries() []QueryDecl
	setup() (Teardown, error)
	run(ctx *Context) error
}

type instance[S any] struct {
	sys   *System[S]
	state S
}

func (i *instance[S]) Name() string         { return i.sys.name }
func (i *instance[S]) Queries() []QueryDecl { return i.sys.queries }

func (i *instance[S]) setup() (Teardown, error) {
	if err := i.sys.schema.Validate(i.state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if i.sys.init == nil {
		return nil, nil
	}
	td, err := i.sys.init(&i.state)
	if err != nil {
		if td != nil {
			td()
		}
		return nil, err
	}
	return td, nil
}

func (i *instance[S]) run(ctx *Context) error {
	return i.sys.execute(ctx, &i.state)
}

// StateOf returns the state bound into r if r was built by System[S].With.
func StateOf[S any](r Runnable) (*S, bool) {
	i, ok := r.(*instance[S])
	if !ok {
		return nil, false
	}
	return &i.state, true
}
