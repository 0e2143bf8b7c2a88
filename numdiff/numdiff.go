// Package numdiff estimates gradients of scalar functions numerically.
// Estimates may be restricted so that no function evaluation falls
// outside of a box.
package numdiff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// Differentiator estimates the gradient of f at x. Lower and upper
// bound the region f may be evaluated in. Either may be nil, meaning
// unbounded, and may hold infinite elements.
type Differentiator interface {
	Gradient(f func([]float64) float64, x, lower, upper []float64) []float64
}

// Method names a Differentiator implementation
type Method string

const (
	MethodRidders Method = "ridders"
	MethodCentral Method = "central"
)

// New returns the Differentiator for the named method. For the central
// method, step is the finite difference step and 0 means the formula's
// default. For Ridders' method, step caps the initial step and 0 means
// no cap.
func New(method Method, step float64) (Differentiator, error) {
	if step < 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("new: step must be non-negative, got %v", step)
	}

	switch method {
	case MethodRidders:
		return &Ridders{MaxStep: step}, nil
	case MethodCentral:
		return &Central{Step: step}, nil
	}
	return nil, fmt.Errorf("new: unknown method %q", method)
}

// Central estimates gradients with second-order central differences
type Central struct {
	// Step is the finite difference step, 0 means the default step of
	// fd.Central
	Step float64
}

// Gradient implements the Differentiator interface. Where a central
// stencil would leave the bounds, the one-sided forward or backward
// formula is used instead.
func (c *Central) Gradient(f func([]float64) float64, x, lower,
	upper []float64) []float64 {
	step := c.Step
	if step == 0 {
		step = fd.Central.Step
	}

	if !touches(x, lower, upper, step) {
		return fd.Gradient(nil, f, x, &fd.Settings{
			Formula: fd.Central,
			Step:    step,
		})
	}

	grad := make([]float64, len(x))
	for i := range x {
		formula := fd.Central
		switch {
		case x[i]-step < at(lower, i, math.Inf(-1)):
			formula = fd.Forward
		case x[i]+step > at(upper, i, math.Inf(1)):
			formula = fd.Backward
		}

		grad[i] = fd.Derivative(partial(f, x, i), x[i], &fd.Settings{
			Formula: formula,
			Step:    step,
		})
	}
	return grad
}

// partial returns f as a function of its i-th coordinate only, with all
// other coordinates held at x
func partial(f func([]float64) float64, x []float64, i int) func(float64) float64 {
	xi := make([]float64, len(x))
	return func(v float64) float64 {
		copy(xi, x)
		xi[i] = v
		return f(xi)
	}
}

// touches returns whether any central stencil of the given step around
// x leaves the bounds
func touches(x, lower, upper []float64, step float64) bool {
	for i := range x {
		if x[i]-step < at(lower, i, math.Inf(-1)) ||
			x[i]+step > at(upper, i, math.Inf(1)) {
			return true
		}
	}
	return false
}

func at(v []float64, i int, def float64) float64 {
	if i < len(v) {
		return v[i]
	}
	return def
}
