package engine

import (
	"fmt"

	"github.com/eykd/storytest-go/internal/story"
)

// Report aggregates the Then sentences that failed in one run. It records the
// first failure in detail and counts the rest. A run that produced a Report
// returns it as its error.
type Report struct {
	// Sentence is the first Then sentence that failed.
	Sentence story.Sentence `json:"sentence"`
	// Expected is the expected value of the first failure.
	Expected string `json:"expected"`
	// Actual is the actual value of the first failure.
	Actual string `json:"actual"`
	// Diff is the comparison diff of the first failure, if any.
	Diff string `json:"diff,omitempty"`
	// Count is the number of Then sentences that failed.
	Count int `json:"count"`
}

func (r *Report) Error() string {
	return fmt.Sprintf("%d then sentence(s) failed; first %q: expected %q, actual %q",
		r.Count, r.Sentence.Raw, r.Expected, r.Actual)
}

// HandlerError is a fatal failure raised by a handler: any error from a Given
// or When handler, a non-comparison error from a Then handler, or a panic.
type HandlerError struct {
	Sentence story.Sentence
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %q failed: %v", e.Sentence.Raw, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
