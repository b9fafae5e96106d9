package drillhole

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySurvey indicates a hole was desurveyed with no survey stations.
	ErrEmptySurvey = errors.New("drillhole: empty survey")

	// ErrUnknownHole indicates a hole id not present in the collar data.
	ErrUnknownHole = errors.New("drillhole: hole not found in collar")

	// ErrUnknownTable indicates a table name not registered in the database.
	ErrUnknownTable = errors.New("drillhole: table not found")

	// ErrEmptyTable indicates an operation on a table with no records.
	ErrEmptyTable = errors.New("drillhole: empty table")

	// ErrInvalidStep indicates a non-positive step or interval width.
	ErrInvalidStep = errors.New("drillhole: step must be positive")

	// ErrDepthExceedsTotal indicates a record deeper than the hole's total depth.
	ErrDepthExceedsTotal = errors.New("drillhole: depth exceeds hole total depth")

	// ErrUnsupportedFormat indicates an unsupported file format.
	ErrUnsupportedFormat = errors.New("drillhole: unsupported file format")

	// ErrBoundsExceeded indicates a strict interpolator was queried outside
	// its fitted depth range.
	ErrBoundsExceeded = errors.New("drillhole: depth outside interpolation range")
)

// HoleError records the failure of one hole inside a batch operation.
// Batch operations keep processing the remaining holes and return the
// collected HoleErrors alongside the partial result.
type HoleError struct {
	HoleID string
	Err    error
}

// Error implements the error interface.
func (e *HoleError) Error() string {
	return fmt.Sprintf("hole %q: %v", e.HoleID, e.Err)
}

// Unwrap returns the underlying error.
func (e *HoleError) Unwrap() error { return e.Err }

// HoleErrors aggregates per-hole failures from a batch operation.
type HoleErrors []*HoleError

// Error implements the error interface.
func (es HoleErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// orNil returns the aggregate as an error, or nil when empty.
func (es HoleErrors) orNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}
