package handler

import (
	"errors"
	"fmt"

	"github.com/eykd/storytest-go/internal/story"
)

// Resolution failures, one per sentence kind.
var (
	ErrGivenNotFound = errors.New("given handler not found")
	ErrWhenNotFound  = errors.New("when handler not found")
	ErrThenNotFound  = errors.New("then handler not found")
)

// NotFoundError reports a sentence no handler on the type or its ancestors
// answers. It matches the sentinel for its kind under errors.Is.
type NotFoundError struct {
	Kind   story.Kind
	Phrase string
	Type   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q on %s", notFoundSentinel(e.Kind), e.Phrase, e.Type)
}

// Is reports whether target is the sentinel for the error's kind.
func (e *NotFoundError) Is(target error) bool {
	return target == notFoundSentinel(e.Kind)
}

func notFoundSentinel(k story.Kind) error {
	switch k {
	case story.Given:
		return ErrGivenNotFound
	case story.When:
		return ErrWhenNotFound
	default:
		return ErrThenNotFound
	}
}

// Binding is a resolved handler together with the type that declares it.
type Binding struct {
	Handler Handler
	// Owner is the type in the ancestor chain that declares Handler.
	Owner *Type

	upcasts []func(any) (any, error)
}

// Invoke runs the handler on target, which must be an instance of the type
// passed to Resolve. The target is viewed as Owner first.
func (b Binding) Invoke(target any, param string) error {
	recv := target
	for _, up := range b.upcasts {
		v, err := up(recv)
		if err != nil {
			return err
		}
		recv = v
	}
	return b.Handler.call(recv, param)
}

// Resolve finds the handler answering s, searching t's own declarations in
// order and then each ancestor. When several handlers on one type match, the
// first declared wins.
func Resolve(s story.Sentence, t *Type) (Binding, error) {
	var upcasts []func(any) (any, error)
	for cur := t; cur != nil; cur = cur.parent {
		for _, h := range cur.handlers {
			if h.Role == s.Kind && h.Key() == s.Phrase {
				return Binding{Handler: h, Owner: cur, upcasts: upcasts}, nil
			}
		}
		if cur.parent != nil {
			upcasts = append(upcasts, cur.upcast)
		}
	}
	name := "<nil>"
	if t != nil {
		name = t.name
	}
	return Binding{}, &NotFoundError{Kind: s.Kind, Phrase: s.Phrase, Type: name}
}
