// Package check defines the error types shared by the mutsim packages
// and the tolerance checks for probability distributions.
package check

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/floats"
)

// Tolerance is the maximum absolute deviation of a probability sum
// from 1.
const Tolerance = 1e-6

// ErrInvalidRoundCount is returned when the number of rounds is less
// than one.
var ErrInvalidRoundCount = errors.New("number of rounds should be >= 1")

// ValidationError is returned for invalid user input (matrix,
// sequence or region). It is detected before any probability is
// computed.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Msg
}

// Invalid creates a new ValidationError using fmt.Sprintf formatting.
func Invalid(format string, a ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}

// InternalConsistencyError signals that a computed distribution
// doesn't sum to one. This is always a bug and is never recovered.
type InternalConsistencyError struct {
	// What names the distribution.
	What string
	// Sum is the offending sum.
	Sum float64
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error: %s sums to %.12g", e.What, e.Sum)
}

// IsValidation returns true if err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AlmostOne tests if s is 1 within Tolerance.
func AlmostOne(s float64) bool {
	return math.Abs(s-1) <= Tolerance
}

// Distribution verifies that p is non-negative and sums to 1.
func Distribution(what string, p []float64) error {
	for i, v := range p {
		if v < 0 || math.IsNaN(v) {
			return &InternalConsistencyError{
				What: fmt.Sprintf("%s (negative entry at %d)", what, i),
				Sum:  v,
			}
		}
	}
	if s := floats.Sum(p); !AlmostOne(s) {
		return &InternalConsistencyError{What: what, Sum: s}
	}
	return nil
}
