package check

import (
	"errors"
	"fmt"
	"math"

	"github.com/samuelfneumann/pmc/model"
)

var (
	// ErrUnsupportedShape is returned when a Domain's samples cannot be
	// integrated over
	ErrUnsupportedShape = errors.New("don't know how to integrate shape")

	// ErrMismatch is matched by every *MismatchError
	ErrMismatch = errors.New("check mismatch")
)

// MismatchError records a computed value that did not agree with its
// expected value at a point of a model
type MismatchError struct {
	// Check is the name of the failing check
	Check string

	Point model.Point

	// Index is the element of a vector quantity that disagreed, or -1
	// for a scalar quantity
	Index int

	Want      float64
	Got       float64
	Tolerance float64
}

func (e *MismatchError) Error() string {
	what := "value"
	if e.Index >= 0 {
		what = fmt.Sprintf("element %v", e.Index)
	}
	return fmt.Sprintf("%v: %v at %v: expected %v but got %v (tolerance %v)",
		e.Check, what, e.Point, e.Want, e.Got, e.Tolerance)
}

// Is reports whether target is ErrMismatch
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// agree returns whether got is within tol of want. NaN never agrees.
func agree(want, got, tol float64) bool {
	return math.Abs(want-got) <= tol
}
