// Package options implements the generic functional-option pattern shared by the
// series, discretization and snapshot packages.
package options

// Option represents a functional option for configuring any type T.
type Option[T any] interface {
	apply(T) error
}

// Func is a generic functional option that wraps a function.
type Func[T any] struct {
	applyFunc func(T) error
}

// apply implements the Option interface.
func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates a new functional option from a function that may fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates a functional option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Check creates an option that validates value with valid before handing it to set.
// The target is left untouched when validation fails.
func Check[T any, V any](value V, valid func(V) error, set func(T, V)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			if err := valid(value); err != nil {
				return err
			}
			set(target, value)

			return nil
		},
	}
}

// Apply applies options to target in order and stops at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
