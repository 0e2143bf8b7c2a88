package quadrature

import "errors"

var (
	// ErrMaxIntervals is returned when refinement stops before the
	// target error is reached. The accompanying estimate is still the
	// best one available.
	ErrMaxIntervals = errors.New("maximum number of intervals reached")

	// ErrNotFinite is returned when the integral estimate is NaN or
	// infinite
	ErrNotFinite = errors.New("integral is not finite")
)
