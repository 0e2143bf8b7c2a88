// Package quadrature implements globally adaptive Gauss-Legendre
// integration of functions over one, two and three dimensional boxes.
// Infinite bounds are handled by a change of variables onto a finite
// interval.
package quadrature

import (
	"container/heap"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/integrate/quad"
)

// Settings determines how an Integrator refines its estimate
type Settings struct {
	// Order is the number of Legendre nodes of the coarse rule on each
	// interval. The error of an interval is estimated by comparing
	// against a rule of twice the order.
	Order int `yaml:"order"`

	// Panels is the number of equal intervals the integration range is
	// split into before refinement begins
	Panels int `yaml:"panels"`

	// AbsTol is the target absolute error of the estimate
	AbsTol float64 `yaml:"abs_tol"`

	// MaxIntervals bounds the number of intervals refinement may create
	MaxIntervals int `yaml:"max_intervals"`
}

// DefaultSettings returns the default integration settings
func DefaultSettings() Settings {
	return Settings{
		Order:        10,
		Panels:       8,
		AbsTol:       1e-9,
		MaxIntervals: 4000,
	}
}

// Validate returns an error if the settings cannot be used to integrate
func (s Settings) Validate() error {
	if s.Order < 1 {
		return fmt.Errorf("validate: order must be positive, got %v", s.Order)
	}
	if s.Panels < 1 {
		return fmt.Errorf("validate: panels must be positive, got %v",
			s.Panels)
	}
	if !(s.AbsTol > 0) {
		return fmt.Errorf("validate: abs_tol must be positive, got %v",
			s.AbsTol)
	}
	if s.MaxIntervals < s.Panels {
		return fmt.Errorf("validate: max_intervals (%v) must be at least "+
			"panels (%v)", s.MaxIntervals, s.Panels)
	}
	return nil
}

// Integrator integrates functions with a fixed set of Settings. An
// Integrator is safe for concurrent use.
type Integrator struct {
	settings Settings

	// Legendre rules on [-1, 1] of order n and 2n
	coarse rule
	fine   rule
}

type rule struct {
	x, w []float64
}

func newRule(n int) rule {
	r := rule{x: make([]float64, n), w: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.x, r.w, -1, 1)
	return r
}

// apply integrates g over [l, r] with the rule
func (ru rule) apply(g func(float64) float64, l, r float64) float64 {
	c, h := (l+r)/2, (r-l)/2
	var sum float64
	for i := range ru.x {
		sum += ru.w[i] * g(c+h*ru.x[i])
	}
	return h * sum
}

// New returns a new Integrator
func New(s Settings) (*Integrator, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Integrator{
		settings: s,
		coarse:   newRule(s.Order),
		fine:     newRule(2 * s.Order),
	}, nil
}

// Settings returns the settings of the Integrator
func (in *Integrator) Settings() Settings {
	return in.settings
}

// Integrate computes the integral of f over [a, b]. Either bound may be
// infinite. F is never evaluated at a finite bound, so it may diverge
// there as long as the integral converges. Points are locations in (a, b) where f changes rapidly,
// such as modes or kinks, and are used as initial interval edges.
//
// If refinement stops before the target error is reached, the best
// estimate is returned together with an error wrapping ErrMaxIntervals.
// If the estimate is not finite, an error wrapping ErrNotFinite is
// returned.
func (in *Integrator) Integrate(f func(float64) float64, a, b float64,
	points ...float64) (float64, error) {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN(), fmt.Errorf("integrate: %w: bounds [%v, %v]",
			ErrNotFinite, a, b)
	}
	if a == b {
		return 0, nil
	}
	if a > b {
		v, err := in.Integrate(f, b, a, points...)
		return -v, err
	}

	t := newTransform(a, b)
	g := func(s float64) float64 {
		x, dx := t.at(s)

		// Nodes rounded onto an endpoint carry no mass
		if dx == 0 || x <= a || x >= b {
			return 0
		}
		return f(x) * dx
	}

	// Initial edges in the transformed space
	edges := make([]float64, 0, in.settings.Panels+1+len(points))
	width := (t.hi - t.lo) / float64(in.settings.Panels)
	for i := 0; i <= in.settings.Panels; i++ {
		edges = append(edges, t.lo+float64(i)*width)
	}
	edges[len(edges)-1] = t.hi
	for _, p := range points {
		if p > a && p < b {
			if s := t.inverse(p); s > t.lo && s < t.hi {
				edges = append(edges, s)
			}
		}
	}
	slices.Sort(edges)
	edges = slices.Compact(edges)

	value, err := in.adapt(g, edges)
	if err != nil {
		return value, fmt.Errorf("integrate: [%v, %v]: %w", a, b, err)
	}
	return value, nil
}

// adapt runs global adaptive refinement, always bisecting the interval
// with the largest error estimate
func (in *Integrator) adapt(g func(float64) float64, edges []float64) (
	float64, error) {
	intervals := make(intervalHeap, 0, len(edges)-1)
	var errSum float64
	for i := 0; i < len(edges)-1; i++ {
		iv := in.estimate(g, edges[i], edges[i+1])
		intervals = append(intervals, iv)
		errSum += iv.err
	}
	heap.Init(&intervals)

	var done []interval
	for errSum > in.settings.AbsTol && intervals.Len() > 0 &&
		intervals.Len()+len(done) < in.settings.MaxIntervals {
		worst := heap.Pop(&intervals).(interval)
		if math.IsNaN(worst.err) {
			done = append(done, worst)
			break
		}

		mid := (worst.l + worst.r) / 2
		if mid <= worst.l || mid >= worst.r {
			// No more resolution in floating point
			done = append(done, worst)
			continue
		}

		left := in.estimate(g, worst.l, mid)
		right := in.estimate(g, mid, worst.r)
		heap.Push(&intervals, left)
		heap.Push(&intervals, right)
		errSum += left.err + right.err - worst.err
	}

	var value float64
	errSum = 0
	for _, iv := range append(done, intervals...) {
		value += iv.value
		errSum += iv.err
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value, fmt.Errorf("%w: estimate %v", ErrNotFinite, value)
	}
	if errSum > in.settings.AbsTol {
		return value, fmt.Errorf("%w: error estimate %v exceeds %v with "+
			"%v intervals", ErrMaxIntervals, errSum, in.settings.AbsTol,
			len(intervals)+len(done))
	}
	return value, nil
}

func (in *Integrator) estimate(g func(float64) float64, l, r float64) interval {
	coarse := in.coarse.apply(g, l, r)
	fine := in.fine.apply(g, l, r)

	return interval{
		l:     l,
		r:     r,
		value: fine,
		err:   math.Abs(fine - coarse),
	}
}

// Integrate2 computes the integral of f(x, y) over x in [a, b] and y in
// [lo(x), hi(x)]. Points holds rapid-change locations per axis and may
// be nil.
func (in *Integrator) Integrate2(f func(x, y float64) float64, a, b float64,
	lo, hi func(x float64) float64, points [][]float64) (float64, error) {
	var innerErr error
	outer := func(x float64) float64 {
		g := func(y float64) float64 { return f(x, y) }
		v, err := in.Integrate(g, lo(x), hi(x), axis(points, 1)...)
		if err != nil && innerErr == nil {
			innerErr = err
		}
		return v
	}

	value, err := in.Integrate(outer, a, b, axis(points, 0)...)
	if err == nil {
		err = innerErr
	}
	if err != nil {
		return value, fmt.Errorf("integrate2: %w", err)
	}
	return value, nil
}

// Integrate3 computes the integral of f(x, y, z) over x in [a, b], y in
// [lo2(x), hi2(x)] and z in [lo3(x, y), hi3(x, y)]. Points holds
// rapid-change locations per axis and may be nil.
func (in *Integrator) Integrate3(f func(x, y, z float64) float64, a, b float64,
	lo2, hi2 func(x float64) float64, lo3, hi3 func(x, y float64) float64,
	points [][]float64) (float64, error) {
	var innerErr error
	outer := func(x float64) float64 {
		g := func(y, z float64) float64 { return f(x, y, z) }
		lo := func(y float64) float64 { return lo3(x, y) }
		hi := func(y float64) float64 { return hi3(x, y) }

		var inner [][]float64
		if len(points) > 1 {
			inner = points[1:]
		}
		v, err := in.Integrate2(g, lo2(x), hi2(x), lo, hi, inner)
		if err != nil && innerErr == nil {
			innerErr = err
		}
		return v
	}

	value, err := in.Integrate(outer, a, b, axis(points, 0)...)
	if err == nil {
		err = innerErr
	}
	if err != nil {
		return value, fmt.Errorf("integrate3: %w", err)
	}
	return value, nil
}

// Constant returns a bound function that ignores its argument
func Constant(v float64) func(float64) float64 {
	return func(float64) float64 { return v }
}

// Constant2 returns a bound function of two arguments that ignores them
func Constant2(v float64) func(float64, float64) float64 {
	return func(float64, float64) float64 { return v }
}

func axis(points [][]float64, i int) []float64 {
	if i < len(points) {
		return points[i]
	}
	return nil
}
