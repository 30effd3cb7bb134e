package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/eykd/storytest-go/internal/handler"
	"github.com/eykd/storytest-go/internal/story"
)

// RunNested parses text and runs it like Run. If t and its ancestors declare
// no matching Given, each type nested in t is tried in declaration order,
// depth first. The first type that resolves the Given decides the outcome,
// whether its story passes or not.
func (e *Engine) RunNested(text string, t *handler.Type) error {
	st, err := story.Parse(text)
	if err != nil {
		return err
	}
	return e.RunStoryNested(st, t)
}

// RunStoryNested is RunNested for a parsed story.
func (e *Engine) RunStoryNested(st story.Story, t *handler.Type) error {
	err := e.RunStory(st, t)
	if !errors.Is(err, handler.ErrGivenNotFound) {
		return err
	}
	for _, nested := range t.Nested() {
		e.logger.Debug("Trying nested type",
			zap.String("outer", t.Name()),
			zap.String("nested", nested.Name()))
		nestedErr := e.RunStoryNested(st, nested)
		if !errors.Is(nestedErr, handler.ErrGivenNotFound) {
			return nestedErr
		}
	}
	return err
}
