// Package suite runs YAML-defined collections of stories.
// Stories run one after another; each gets its own target instance.
package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eykd/storytest-go/internal/engine"
	"github.com/eykd/storytest-go/internal/handler"
)

// Suite is a collection of stories.
type Suite struct {
	Version int     `yaml:"version"`
	Stories []Entry `yaml:"stories"`
}

// Entry is one story in a suite. Exactly one of Text and File is set.
type Entry struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	// Nested enables the nested-type fallback for the Given.
	Nested bool   `yaml:"nested,omitempty"`
	Text   string `yaml:"text,omitempty"`
	// File is relative to the suite file's directory.
	File string `yaml:"file,omitempty"`
}

// Status is the outcome of one story.
type Status string

// Story outcomes.
const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

// Result captures the outcome of one story.
type Result struct {
	Name   string         `json:"name"`
	Target string         `json:"target"`
	Status Status         `json:"status"`
	Report *engine.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

// OK reports whether every story passed.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errors == 0
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Errors++
		}
	}
	return s
}

// Parse decodes and validates a suite.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse suite YAML: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a suite file from disk.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (s *Suite) validate() error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported suite version %d", s.Version)
	}
	for i, e := range s.Stories {
		label := e.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if strings.TrimSpace(e.Target) == "" {
			return fmt.Errorf("story %s: target is required", label)
		}
		if (e.Text == "") == (e.File == "") {
			return fmt.Errorf("story %s: exactly one of text and file is required", label)
		}
	}
	return nil
}

// Runner runs suites with one engine against one catalog.
type Runner struct {
	Engine  *engine.Engine
	Catalog *handler.Catalog
	Logger  *zap.Logger
	// ReadFile loads story files; os.ReadFile when nil.
	ReadFile func(path string) ([]byte, error)
}

// Run executes every story in order. baseDir resolves relative story files.
// A story that cannot be loaded or whose target is unknown is recorded as an
// error and the suite continues.
func (r *Runner) Run(s *Suite, baseDir string) []Result {
	if s == nil || len(s.Stories) == 0 {
		return nil
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	results := make([]Result, 0, len(s.Stories))
	for _, e := range s.Stories {
		res := Result{Name: e.Name, Target: e.Target}
		err := r.runEntry(e, baseDir, readFile)

		var rep *engine.Report
		switch {
		case err == nil:
			res.Status = StatusPassed
		case errors.As(err, &rep):
			res.Status = StatusFailed
			res.Report = rep
		default:
			res.Status = StatusError
			res.Error = err.Error()
		}
		logger.Info("Story result",
			zap.String("name", e.Name),
			zap.String("target", e.Target),
			zap.String("status", string(res.Status)))
		results = append(results, res)
	}
	return results
}

func (r *Runner) runEntry(e Entry, baseDir string, readFile func(string) ([]byte, error)) error {
	typ, ok := r.Catalog.Lookup(e.Target)
	if !ok {
		return fmt.Errorf("unknown target type %q", e.Target)
	}
	text := e.Text
	if e.File != "" {
		path := e.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := readFile(path)
		if err != nil {
			return fmt.Errorf("reading story: %w", err)
		}
		text = string(data)
	}
	if e.Nested {
		return r.Engine.RunNested(text, typ)
	}
	return r.Engine.Run(text, typ)
}
