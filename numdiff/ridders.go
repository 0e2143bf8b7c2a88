package numdiff

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

const (
	// Step shrink factor between extrapolation columns
	riddersCon  = 1.4
	riddersCon2 = riddersCon * riddersCon

	// Size of the extrapolation tableau
	riddersTab = 10

	// Stop when the error grows by this factor
	riddersSafe = 2.0

	// A tableau whose relative error estimate exceeds riddersTol is
	// rebuilt from an initial step riddersShrink times smaller, at most
	// riddersRetries times
	riddersTol     = 1e-10
	riddersShrink  = 8.0
	riddersRetries = 3
)

// Ridders estimates gradients with Ridders' method: central differences
// are computed at geometrically shrinking steps and extrapolated to a
// zero step with Neville's algorithm. The initial step is chosen so that
// no evaluation falls outside of the bounds, and is reduced when the
// extrapolation does not settle, as happens when the step is wider than
// the scale on which the function curves.
type Ridders struct {
	// MaxStep caps the initial step, 0 means no cap
	MaxStep float64
}

// Gradient implements the Differentiator interface
func (r *Ridders) Gradient(f func([]float64) float64, x, lower,
	upper []float64) []float64 {
	grad := make([]float64, len(x))
	for i := range x {
		g := partial(f, x, i)

		h := r.initialStep(x[i], at(lower, i, math.Inf(-1)),
			at(upper, i, math.Inf(1)))
		if h == 0 {
			grad[i] = oneSided(g, x[i], lower, upper, i)
			continue
		}
		grad[i] = refine(g, x[i], h)
	}
	return grad
}

// refine runs Ridders' method from shrinking initial steps until the
// error estimate is small relative to the derivative, returning the
// estimate with the smallest error seen
func refine(g func(float64) float64, x, h float64) float64 {
	best, bestErr := ridders(g, x, h)
	for k := 0; k < riddersRetries; k++ {
		if bestErr <= riddersTol*math.Max(1, math.Abs(best)) {
			break
		}

		h /= riddersShrink
		ans, err := ridders(g, x, h)
		if err < bestErr {
			best, bestErr = ans, err
		}
	}
	return best
}

func (r *Ridders) initialStep(x, lower, upper float64) float64 {
	h := 0.1 * math.Max(math.Abs(x), 1)
	if r.MaxStep > 0 {
		h = math.Min(h, r.MaxStep)
	}

	// Largest stencil point is x ± h
	h = math.Min(h, 0.5*(x-lower))
	h = math.Min(h, 0.5*(upper-x))
	if !(h > 0) {
		return 0
	}
	return h
}

// ridders returns the extrapolated derivative of g at x with initial
// step h, together with its error estimate
func ridders(g func(float64) float64, x, h float64) (float64, float64) {
	central := func(h float64) float64 {
		return fd.Derivative(g, x, &fd.Settings{
			Formula: fd.Central,
			Step:    h,
		})
	}

	// Shrink the step until the stencil stays where g is finite
	var a [riddersTab][riddersTab]float64
	a[0][0] = central(h)
	for k := 0; k < riddersTab && !finite(a[0][0]); k++ {
		h /= riddersCon2
		a[0][0] = central(h)
	}

	ans := a[0][0]
	err := math.Inf(1)
	for i := 1; i < riddersTab; i++ {
		h /= riddersCon
		a[0][i] = central(h)
		if !finite(a[0][i]) {
			break
		}

		fac := riddersCon2
		for j := 1; j <= i; j++ {
			a[j][i] = (a[j-1][i]*fac - a[j-1][i-1]) / (fac - 1)
			fac *= riddersCon2

			errt := math.Max(math.Abs(a[j][i]-a[j-1][i]),
				math.Abs(a[j][i]-a[j-1][i-1]))
			if errt <= err {
				err = errt
				ans = a[j][i]
			}
		}

		if math.Abs(a[i][i]-a[i-1][i-1]) >= riddersSafe*err {
			break
		}
	}

	return ans, err
}

// oneSided estimates the derivative at a point lying on one of its
// bounds with a forward or backward difference
func oneSided(g func(float64) float64, x float64, lower, upper []float64,
	i int) float64 {
	formula := fd.Forward
	if x >= at(upper, i, math.Inf(1)) {
		formula = fd.Backward
	}
	return fd.Derivative(g, x, &fd.Settings{Formula: formula})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
