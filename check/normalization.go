package check

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/samuelfneumann/pmc/domain"
	"github.com/samuelfneumann/pmc/model"
	"github.com/samuelfneumann/pmc/quadrature"
)

// NameNormalization names the Normalization check
const NameNormalization = "int"

// Normalization checks that the density of a variable integrates, or
// for a discrete variable sums, to one over its Domain for every
// combination of parameter values
type Normalization struct {
	// Tolerance is the largest accepted absolute difference between the
	// total probability and one
	Tolerance float64

	Quadrature quadrature.Settings

	// Logger defaults to slog.Default
	Logger *slog.Logger
}

// Name implements the Checker interface
func (n *Normalization) Name() string { return NameNormalization }

// Check implements the Checker interface
func (n *Normalization) Check(m *model.Model, value *model.Var,
	valueDomain *domain.Domain, params []domain.Named) error {
	logger := loggerOr(n.Logger).With("check", NameNormalization)

	in, err := quadrature.New(n.Quadrature)
	if err != nil {
		return fmt.Errorf("normalization: %v", err)
	}

	form := valueDomain.Form()
	switch form {
	case domain.Scalar, domain.Vector2, domain.Vector3:
	default:
		return fmt.Errorf("normalization: %w %v", ErrUnsupportedShape,
			valueDomain.Shape())
	}

	for vals := range domain.Product(domains(params)...) {
		pt := make(model.Point, len(params)+1)
		for i, p := range params {
			pt[p.Name] = vals[i]
		}
		pt[value.Name] = value.Test.Clone()

		// Density of the value with the parameters fixed
		logp := model.NewBijection(model.NewOrdering(value), pt).
			MapFunc(m.LogProb)
		var evalErr error
		pdf := func(x []float64) float64 {
			lp, err := logp(x)
			if err != nil {
				if evalErr == nil {
					evalErr = err
				}
				return math.NaN()
			}
			return math.Exp(lp)
		}

		logger.Debug("integrating density", "point", pt)
		points := breakpoints(pt, value.Name, valueDomain)

		var area float64
		switch {
		case form == domain.Scalar && value.Kind == domain.Discrete:
			area, err = sum(pdf, valueDomain.LowerAt(0),
				valueDomain.UpperAt(0))

		case form == domain.Scalar:
			f := func(x float64) float64 { return pdf([]float64{x}) }
			area, err = in.Integrate(f, valueDomain.LowerAt(0),
				valueDomain.UpperAt(0), points[0]...)

		case form == domain.Vector2:
			f := func(x, y float64) float64 { return pdf([]float64{x, y}) }
			area, err = in.Integrate2(f,
				valueDomain.LowerAt(0), valueDomain.UpperAt(0),
				quadrature.Constant(valueDomain.LowerAt(1)),
				quadrature.Constant(valueDomain.UpperAt(1)),
				points,
			)

		default:
			f := func(x, y, z float64) float64 {
				return pdf([]float64{x, y, z})
			}
			area, err = in.Integrate3(f,
				valueDomain.LowerAt(0), valueDomain.UpperAt(0),
				quadrature.Constant(valueDomain.LowerAt(1)),
				quadrature.Constant(valueDomain.UpperAt(1)),
				quadrature.Constant2(valueDomain.LowerAt(2)),
				quadrature.Constant2(valueDomain.UpperAt(2)),
				points,
			)
		}

		if evalErr != nil {
			return fmt.Errorf("normalization: %v: %w", pt, evalErr)
		}
		if errors.Is(err, quadrature.ErrMaxIntervals) {
			logger.Warn("integral did not converge", "point", pt,
				"area", area, "error", err)
		} else if err != nil {
			return fmt.Errorf("normalization: %v: %w", pt, err)
		}

		if !agree(1, area, n.Tolerance) {
			return &MismatchError{
				Check:     NameNormalization,
				Point:     pt,
				Index:     -1,
				Want:      1,
				Got:       area,
				Tolerance: n.Tolerance,
			}
		}
	}

	return nil
}

// sum adds up f over the integers in [lower, upper]
func sum(f func([]float64) float64, lower, upper float64) (float64, error) {
	if math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return math.NaN(), fmt.Errorf("sum: cannot sum over [%v, %v]", lower,
			upper)
	}

	var total float64
	x := []float64{0}
	for k := math.Ceil(lower); k <= upper; k++ {
		x[0] = k
		total += f(x)
	}
	return total, nil
}

// breakpoints returns, per element of a sample of d, the locations the
// density may change rapidly at: the Domain's values and the matching
// elements of the parameter values of pt
func breakpoints(pt model.Point, value string, d *domain.Domain) [][]float64 {
	size := domain.Size(d.Shape())
	points := make([][]float64, size)
	for i := range points {
		for _, v := range d.Values() {
			points[i] = append(points[i], v[i])
		}
		for name, v := range pt {
			if name == value {
				continue
			}
			switch len(v) {
			case 1:
				points[i] = append(points[i], v[0])
			case size:
				points[i] = append(points[i], v[i])
			}
		}
	}
	return points
}

func domains(params []domain.Named) []*domain.Domain {
	ds := make([]*domain.Domain, len(params))
	for i, p := range params {
		ds[i] = p.Domain
	}
	return ds
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
