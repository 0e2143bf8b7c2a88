package quadrature

import "math"

// transform maps a finite interval [lo, hi] onto the integration range
// [a, b], which may have infinite bounds. Finite ranges are mapped from
// [0, 1] by the cubic x = a + (b-a)(3t² - 2t³), whose Jacobian vanishes
// at both ends and cancels integrable endpoint singularities such as
// (b-x)^-½.
type transform struct {
	a, b   float64
	lo, hi float64
}

func newTransform(a, b float64) transform {
	switch {
	case math.IsInf(a, -1) && math.IsInf(b, 1):
		return transform{a: a, b: b, lo: -1, hi: 1}
	case math.IsInf(a, -1) || math.IsInf(b, 1):
		return transform{a: a, b: b, lo: 0, hi: 1}
	}
	return transform{a: a, b: b, lo: 0, hi: 1}
}

// at returns the point x in [a, b] corresponding to t and the Jacobian
// dx/dt
func (tr transform) at(t float64) (x, dx float64) {
	switch {
	case math.IsInf(tr.a, -1) && math.IsInf(tr.b, 1):
		// x = t / (1 - t²)
		d := 1 - t*t
		return t / d, (1 + t*t) / (d * d)

	case math.IsInf(tr.b, 1):
		// x = a + t / (1 - t)
		d := 1 - t
		return tr.a + t/d, 1 / (d * d)

	case math.IsInf(tr.a, -1):
		// x = b - (1 - t) / t
		return tr.b - (1-t)/t, 1 / (t * t)
	}

	w := tr.b - tr.a
	return tr.a + w*t*t*(3-2*t), 6 * w * t * (1 - t)
}

// inverse returns t such that at(t) = x
func (tr transform) inverse(x float64) float64 {
	switch {
	case math.IsInf(tr.a, -1) && math.IsInf(tr.b, 1):
		return 2 * x / (1 + math.Sqrt(1+4*x*x))

	case math.IsInf(tr.b, 1):
		u := x - tr.a
		return u / (1 + u)

	case math.IsInf(tr.a, -1):
		u := tr.b - x
		return 1 / (1 + u)
	}

	u := math.Max(0, math.Min(1, (x-tr.a)/(tr.b-tr.a)))
	return 0.5 - math.Sin(math.Asin(1-2*u)/3)
}
