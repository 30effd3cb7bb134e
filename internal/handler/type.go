package handler

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoConstructor is returned when a type has neither a default constructor
// nor an enclosing type to construct it from.
var ErrNoConstructor = errors.New("no constructor")

// Type describes one target type: how to construct it, where it sits in the
// ancestor and nesting hierarchies, and which handlers it declares.
type Type struct {
	name        string
	handlers    []Handler
	parent      *Type
	upcast      func(any) (any, error)
	enclosing   *Type
	nested      []*Type
	construct   func() any
	constructIn func(outer any) (any, error)
}

// Option configures a Type.
type Option func(*Type)

// NewType declares a target type.
func NewType(name string, opts ...Option) *Type {
	t := &Type{name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Constructor sets the default constructor.
func Constructor[T any](fn func() T) Option {
	return func(t *Type) {
		t.construct = func() any { return fn() }
	}
}

// Enclosed nests the type inside outer. When the type has no default
// constructor it is built by fn from a freshly constructed outer instance.
// Nested types are searched in the order they are declared.
func Enclosed[O, T any](outer *Type, fn func(O) T) Option {
	return func(t *Type) {
		t.enclosing = outer
		outer.nested = append(outer.nested, t)
		if fn == nil {
			return
		}
		t.constructIn = func(v any) (any, error) {
			o, ok := v.(O)
			if !ok {
				return nil, fmt.Errorf("%s: enclosing instance is %T", t.name, v)
			}
			return fn(o), nil
		}
	}
}

// Extends makes parent the ancestor of the type. fn views an instance of the
// type as an instance of parent so ancestor handlers can run on it.
func Extends[T, P any](parent *Type, fn func(T) P) Option {
	return func(t *Type) {
		t.parent = parent
		t.upcast = func(v any) (any, error) {
			c, ok := v.(T)
			if !ok {
				return nil, fmt.Errorf("%s: cannot view %T as %s", t.name, v, parent.name)
			}
			return fn(c), nil
		}
	}
}

// Handlers appends handler declarations in order.
func Handlers(hs ...Handler) Option {
	return func(t *Type) {
		t.handlers = append(t.handlers, hs...)
	}
}

// Name returns the declared type name.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

// Parent returns the ancestor type, or nil.
func (t *Type) Parent() *Type { return t.parent }

// Enclosing returns the type this one is nested in, or nil.
func (t *Type) Enclosing() *Type { return t.enclosing }

// Nested returns the directly nested types in declaration order.
func (t *Type) Nested() []*Type { return slices.Clone(t.nested) }

// Handlers returns the handlers declared directly on the type.
func (t *Type) Handlers() []Handler { return slices.Clone(t.handlers) }

// Instantiate builds a fresh instance. The default constructor is preferred;
// otherwise the enclosing instance is built first, the same way, and passed in.
func (t *Type) Instantiate() (any, error) {
	if t.construct != nil {
		return t.construct(), nil
	}
	if t.constructIn != nil && t.enclosing != nil {
		outer, err := t.enclosing.Instantiate()
		if err != nil {
			return nil, fmt.Errorf("constructing %s: %w", t.name, err)
		}
		return t.constructIn(outer)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoConstructor, t.name)
}
