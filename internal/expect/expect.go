// Package expect provides the comparison primitive Then handlers use to
// signal a failed assertion.
package expect

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// ComparisonFailure is the signal a Then handler returns when the value it
// checks differs from the value the story expects. Any other error from a
// handler is treated as fatal.
type ComparisonFailure struct {
	Expected string
	Actual   string
	// Diff is a cmp.Diff rendering (-expected +actual), empty for scalars.
	Diff string
}

func (e *ComparisonFailure) Error() string {
	return fmt.Sprintf("expected %q but was %q", e.Expected, e.Actual)
}

// Equal returns nil when expected and actual are equal under cmp.Equal and a
// *ComparisonFailure otherwise.
func Equal(expected, actual any, opts ...cmp.Option) error {
	if cmp.Equal(expected, actual, opts...) {
		return nil
	}
	f := &ComparisonFailure{
		Expected: fmt.Sprint(expected),
		Actual:   fmt.Sprint(actual),
	}
	if !scalar(expected) || !scalar(actual) {
		f.Diff = cmp.Diff(expected, actual, opts...)
	}
	return f
}

// Fail builds a failure from already-rendered values.
func Fail(expected, actual string) error {
	return &ComparisonFailure{Expected: expected, Actual: actual}
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
