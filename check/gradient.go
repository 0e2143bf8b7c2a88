package check

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/samuelfneumann/pmc/domain"
	"github.com/samuelfneumann/pmc/model"
	"github.com/samuelfneumann/pmc/numdiff"
)

// NameGradient names the Gradient check
const NameGradient = "dlogp"

// Gradient checks the symbolic gradient of a model's log-density with
// respect to its continuous variables against a numerical estimate, at
// every combination of parameter and value Domain values
type Gradient struct {
	// Tolerance is the largest accepted absolute difference between an
	// element of the symbolic and the numerical gradient
	Tolerance float64

	// Differentiator estimates gradients numerically. If nil, the check
	// is skipped.
	Differentiator numdiff.Differentiator

	// Logger defaults to slog.Default
	Logger *slog.Logger
}

// Name implements the Checker interface
func (gr *Gradient) Name() string { return NameGradient }

// Check implements the Checker interface
func (gr *Gradient) Check(m *model.Model, value *model.Var,
	valueDomain *domain.Domain, params []domain.Named) error {
	logger := loggerOr(gr.Logger).With("check", NameGradient)

	if gr.Differentiator == nil {
		logger.Debug("skipping check", "reason",
			"numerical differentiation unavailable")
		return nil
	}
	cont := m.ContinuousVars()
	if len(cont) == 0 {
		logger.Debug("skipping check", "reason", "no continuous variables")
		return nil
	}

	all := append(append([]domain.Named(nil), params...),
		domain.Named{Name: value.Name, Domain: valueDomain})
	byName := make(map[string]*domain.Domain, len(all))
	for _, n := range all {
		byName[n.Name] = n.Domain
	}

	ordering := model.NewOrdering(cont...)
	lower := make([]float64, 0, ordering.Size())
	upper := make([]float64, 0, ordering.Size())
	for _, v := range cont {
		d, ok := byName[v.Name]
		if !ok {
			return fmt.Errorf("gradient: %w: no domain for %q",
				model.ErrUnknownVar, v.Name)
		}
		for i := 0; i < v.Size(); i++ {
			lower = append(lower, d.LowerAt(i))
			upper = append(upper, d.UpperAt(i))
		}
	}

	for vals := range domain.Product(domains(all)...) {
		pt := make(model.Point, len(all))
		for i, n := range all {
			pt[n.Name] = vals[i]
		}

		bij := model.NewBijection(ordering, pt)
		x, err := bij.Map(pt)
		if err != nil {
			return fmt.Errorf("gradient: %v", err)
		}

		logp := bij.MapFunc(m.LogProb)
		lp, err := logp(x)
		if err != nil {
			return fmt.Errorf("gradient: %v: %w", pt, err)
		}
		if math.IsInf(lp, 0) || math.IsNaN(lp) {
			logger.Debug("skipping point", "point", pt, "logp", lp)
			continue
		}

		got, err := bij.MapPointFunc(m.DLogProb)(x)
		if err != nil {
			return fmt.Errorf("gradient: %v: %w", pt, err)
		}

		var evalErr error
		f := func(x []float64) float64 {
			v, err := logp(x)
			if err != nil {
				if evalErr == nil {
					evalErr = err
				}
				return math.NaN()
			}
			return v
		}
		want := gr.Differentiator.Gradient(f, x, lower, upper)
		if evalErr != nil {
			return fmt.Errorf("gradient: %v: %w", pt, evalErr)
		}

		for i := range want {
			if !agree(want[i], got[i], gr.Tolerance) {
				return &MismatchError{
					Check:     NameGradient,
					Point:     pt,
					Index:     i,
					Want:      want[i],
					Got:       got[i],
					Tolerance: gr.Tolerance,
				}
			}
		}
	}

	return nil
}
