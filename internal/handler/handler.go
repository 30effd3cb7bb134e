// Package handler declares Given/When/Then handlers on target types and
// resolves story sentences to them.
//
// Each target type is described once by a Type: its handlers in declaration
// order, an optional ancestor reached through an upcast function, and an
// optional enclosing type for nested construction. Resolution walks that
// table and never inspects the Go type itself.
package handler

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/eykd/storytest-go/internal/story"
)

// Param is the set of parameter types a handler may accept.
type Param interface {
	int | string
}

// ParamError reports a story parameter that could not be converted to the
// handler's parameter type.
type ParamError struct {
	Param string
	Want  string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q is not a valid %s: %v", e.Param, e.Want, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Handler is a declared capability bound to a role and a phrase.
type Handler struct {
	// Role is the sentence kind the handler answers.
	Role story.Kind
	// Phrase is the declared phrase. Its last space-delimited token is a
	// placeholder for the parameter and takes no part in matching.
	Phrase string

	recv   reflect.Type
	invoke func(recv any, param string) error
}

// Key is the phrase used for matching: Phrase without its placeholder.
// A phrase with no placeholder has an empty key and never matches.
func (h Handler) Key() string {
	i := strings.LastIndex(h.Phrase, " ")
	if i < 0 {
		return ""
	}
	return h.Phrase[:i]
}

// Receiver names the Go type the handler is declared on.
func (h Handler) Receiver() string {
	if h.recv == nil {
		return ""
	}
	return h.recv.String()
}

func (h Handler) String() string {
	return h.Role.String() + " " + h.Phrase
}

func (h Handler) call(recv any, param string) error {
	if h.invoke == nil {
		return fmt.Errorf("handler %q has no function", h.Phrase)
	}
	return h.invoke(recv, param)
}

// Given declares a Given handler taking one parameter.
func Given[T any, P Param](phrase string, fn func(T, P) error) Handler {
	return bind(story.Given, phrase, fn)
}

// When declares a When handler taking one parameter.
func When[T any, P Param](phrase string, fn func(T, P) error) Handler {
	return bind(story.When, phrase, fn)
}

// Then declares a Then handler taking one parameter.
func Then[T any, P Param](phrase string, fn func(T, P) error) Handler {
	return bind(story.Then, phrase, fn)
}

// Bare declares a handler that ignores the sentence parameter.
func Bare[T any](role story.Kind, phrase string, fn func(T) error) Handler {
	return bind(role, phrase, func(recv T, _ string) error { return fn(recv) })
}

func bind[T any, P Param](role story.Kind, phrase string, fn func(T, P) error) Handler {
	recvType := reflect.TypeFor[T]()
	return Handler{
		Role:   role,
		Phrase: phrase,
		recv:   recvType,
		invoke: func(recv any, raw string) error {
			typed, ok := recv.(T)
			if !ok {
				return fmt.Errorf("handler %q declared on %s cannot run on %T", phrase, recvType, recv)
			}
			p, err := convert[P](raw)
			if err != nil {
				return err
			}
			return fn(typed, p)
		},
	}
}

func convert[P Param](raw string) (P, error) {
	var p P
	switch ptr := any(&p).(type) {
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, &ParamError{Param: raw, Want: "int", Err: err}
		}
		*ptr = n
	case *string:
		*ptr = raw
	}
	return p, nil
}
