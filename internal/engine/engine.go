// Package engine runs parsed stories against target types.
//
// A run resolves and invokes the story's single Given, then walks the
// remaining sentences in order. The target's fields are captured before each
// When-run; a Then that fails its comparison rolls the target back to that
// capture and is counted into a Report instead of stopping the run. Every
// other failure aborts the run.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eykd/storytest-go/internal/expect"
	"github.com/eykd/storytest-go/internal/handler"
	"github.com/eykd/storytest-go/internal/snapshot"
	"github.com/eykd/storytest-go/internal/story"
)

// Engine executes stories. It holds configuration only, so one Engine may
// serve any number of runs, concurrently if the targets are independent.
type Engine struct {
	logger  *zap.Logger
	copiers *snapshot.Copiers
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCopiers sets the copy constructors used when capturing snapshots.
func WithCopiers(c *snapshot.Copiers) Option {
	return func(e *Engine) {
		e.copiers = c
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run parses text and runs it against a fresh instance of t, resolving
// handlers on t and its ancestors.
func (e *Engine) Run(text string, t *handler.Type) error {
	st, err := story.Parse(text)
	if err != nil {
		return err
	}
	return e.RunStory(st, t)
}

// RunStory runs a parsed story against a fresh instance of t.
//
// It returns nil when every Then passed, a *Report when some failed, and any
// other error when the run aborted.
func (e *Engine) RunStory(st story.Story, t *handler.Type) error {
	if t == nil {
		return fmt.Errorf("target type is nil")
	}
	r := &run{
		engine:       e,
		typ:          t,
		log:          e.logger.With(zap.String("run", uuid.NewString()), zap.String("type", t.Name())),
		needSnapshot: true,
	}
	r.log.Info("Running story", zap.Int("sentences", len(st)))
	err := r.execute(st)
	r.log.Info("Story finished", zap.String("outcome", outcome(err)))
	return err
}

func outcome(err error) string {
	var rep *Report
	switch {
	case err == nil:
		return "passed"
	case errors.As(err, &rep):
		return "failed"
	default:
		return "aborted"
	}
}

// run is the state of a single story execution.
type run struct {
	engine *Engine
	typ    *handler.Type
	log    *zap.Logger

	target       any
	snap         *snapshot.Snapshot
	needSnapshot bool
	report       *Report
}

func (r *run) execute(st story.Story) error {
	if len(st) == 0 {
		return &handler.NotFoundError{Kind: story.Given, Type: r.typ.Name()}
	}

	given := st[0]
	if given.Kind != story.Given {
		return &handler.NotFoundError{Kind: story.Given, Phrase: given.Phrase, Type: r.typ.Name()}
	}
	b, err := handler.Resolve(given, r.typ)
	if err != nil {
		return err
	}
	target, err := r.typ.Instantiate()
	if err != nil {
		return err
	}
	r.target = target
	if err := r.invoke(b, given); err != nil {
		return err
	}

	for _, s := range st[1:] {
		switch s.Kind {
		case story.When:
			err = r.when(s)
		case story.Then:
			err = r.then(s)
		default:
			r.log.Warn("Skipping extra Given sentence", zap.Int("line", s.Line), zap.String("phrase", s.Phrase))
		}
		if err != nil {
			return err
		}
	}

	if r.report != nil {
		return r.report
	}
	return nil
}

func (r *run) when(s story.Sentence) error {
	if r.needSnapshot {
		snap, err := snapshot.Capture(r.target, r.engine.copiers)
		if err != nil {
			return fmt.Errorf("capturing state before %q: %w", s.Raw, err)
		}
		r.snap = snap
		r.needSnapshot = false
		r.log.Debug("Captured snapshot", zap.Int("line", s.Line), zap.Int("fields", len(snap.Fields())))
	}
	b, err := handler.Resolve(s, r.typ)
	if err != nil {
		return err
	}
	return r.invoke(b, s)
}

func (r *run) then(s story.Sentence) error {
	r.needSnapshot = true
	b, err := handler.Resolve(s, r.typ)
	if err != nil {
		return err
	}
	err = r.invoke(b, s)
	var cf *expect.ComparisonFailure
	if !errors.As(err, &cf) {
		return err
	}

	if r.snap != nil {
		if err := snapshot.Restore(r.target, r.snap); err != nil {
			return err
		}
		r.log.Debug("Restored snapshot", zap.Int("line", s.Line))
	}
	if r.report == nil {
		r.report = &Report{Sentence: s, Expected: cf.Expected, Actual: cf.Actual, Diff: cf.Diff, Count: 1}
	} else {
		r.report.Count++
	}
	r.log.Debug("Then sentence failed",
		zap.Int("line", s.Line),
		zap.String("expected", cf.Expected),
		zap.String("actual", cf.Actual))
	return nil
}

// invoke runs a handler, converting panics into errors. Errors other than a
// comparison failure from a Then handler come back as *HandlerError.
func (r *run) invoke(b handler.Binding, s story.Sentence) (err error) {
	r.log.Debug("Dispatching sentence",
		zap.Stringer("kind", s.Kind),
		zap.String("phrase", s.Phrase),
		zap.String("owner", b.Owner.Name()))

	defer func() {
		if p := recover(); p != nil {
			err = &HandlerError{Sentence: s, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	if err = b.Invoke(r.target, s.Param); err == nil {
		return nil
	}
	var cf *expect.ComparisonFailure
	if s.Kind == story.Then && errors.As(err, &cf) {
		return err
	}
	return &HandlerError{Sentence: s, Err: err}
}
