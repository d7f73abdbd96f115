package ecs

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Schema checks the shape of a component value or of a system's state.
type Schema[T any] interface {
	Validate(v T) error
}

// SchemaFunc adapts a plain function to Schema.
type SchemaFunc[T any] func(v T) error

func (f SchemaFunc[T]) Validate(v T) error { return f(v) }

// Func returns a schema backed by fn.
func Func[T any](fn func(T) error) Schema[T] {
	return SchemaFunc[T](fn)
}

// Any returns a schema that accepts every value.
func Any[T any]() Schema[T] {
	return SchemaFunc[T](func(T) error { return nil })
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct returns a schema that checks `validate:"..."` struct tags on T.
// T must be a struct type.
func Struct[T any]() Schema[T] {
	return SchemaFunc[T](func(v T) error {
		return structValidator().Struct(v)
	})
}

// Var returns a schema that checks a non-struct value against a validator
// tag, e.g. Var[float64]("gte=0").
func Var[T any](tag string) Schema[T] {
	return SchemaFunc[T](func(v T) error {
		return structValidator().Var(v, tag)
	})
}

// All chains schemas; the first failure wins.
func All[T any](schemas ...Schema[T]) Schema[T] {
	return SchemaFunc[T](func(v T) error {
		for _, s := range schemas {
			if err := s.Validate(v); err != nil {
				return err
			}
		}
		return nil
	})
}
