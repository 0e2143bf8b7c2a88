package check_test

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/samuelfneumann/pmc/check"
	"github.com/samuelfneumann/pmc/distribution"
	"github.com/samuelfneumann/pmc/domain"
	"github.com/samuelfneumann/pmc/model"
	"github.com/samuelfneumann/pmc/numdiff"
	"github.com/samuelfneumann/pmc/quadrature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func normalization() *check.Normalization {
	return &check.Normalization{
		Tolerance:  1.5e-7,
		Quadrature: quadrature.DefaultSettings(),
		Logger:     discard,
	}
}

func gradient() *check.Gradient {
	return &check.Gradient{
		Tolerance:      1.5e-6,
		Differentiator: &numdiff.Ridders{},
		Logger:         discard,
	}
}

// wrongDiff returns a gradient of all ones
type wrongDiff struct{}

func (wrongDiff) Gradient(f func([]float64) float64, x, lower,
	upper []float64) []float64 {
	grad := make([]float64, len(x))
	for i := range grad {
		grad[i] = 1
	}
	return grad
}

func unnormalized(x *G.Node) (*G.Node, error) {
	return G.Neg(G.Must(G.Square(x)))
}

func TestBuildModel(t *testing.T) {
	m, err := check.BuildModel(distribution.Normal, domain.R, []domain.Named{
		{Name: "mu", Domain: domain.R},
		{Name: "tau", Domain: domain.Rplus},
	}, nil)
	require.NoError(t, err)
	defer m.Close()

	vars := m.Vars()
	require.Len(t, vars, 3)
	assert.Equal(t, "mu", vars[0].Name)
	assert.Equal(t, "tau", vars[1].Name)
	assert.Equal(t, check.ValueName, vars[2].Name)
	assert.Len(t, m.ContinuousVars(), 3)

	assert.Equal(t, model.Point{
		"mu":            domain.R.At(0),
		"tau":           domain.Rplus.At(0),
		check.ValueName: domain.R.At(0),
	}, m.TestPoint())

	// Discrete parameters keep their Domain's kind
	m, err = check.BuildModel(distribution.Binomial, domain.Nat,
		[]domain.Named{
			{Name: "n", Domain: domain.NatSmall},
			{Name: "p", Domain: domain.Unit},
		}, nil)
	require.NoError(t, err)
	defer m.Close()

	n, err := m.Var("n")
	require.NoError(t, err)
	assert.Equal(t, domain.Discrete, n.Kind)
	value, err := m.Var(check.ValueName)
	require.NoError(t, err)
	assert.Equal(t, domain.Discrete, value.Kind)
	assert.Len(t, m.ContinuousVars(), 1)

	// Vector values take the shape of their Domain
	m, err = check.BuildModel(distribution.MvNormal, domain.Vec2small,
		[]domain.Named{
			{Name: "mu", Domain: domain.Vec2small},
			{Name: "tau", Domain: domain.PdMatrix2},
		}, nil)
	require.NoError(t, err)
	defer m.Close()

	value, err = m.Var(check.ValueName)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2}, value.Shape)
}

func TestBuildModelErrors(t *testing.T) {
	_, err := check.BuildModel(distribution.Normal, domain.R, []domain.Named{
		{Name: "mu", Domain: domain.R},
	}, nil)
	assert.ErrorIs(t, err, distribution.ErrMissingArg)

	_, err = check.BuildModel(distribution.Normal, domain.R, []domain.Named{
		{Name: "mu", Domain: domain.R},
		{Name: "mu", Domain: domain.R},
	}, nil)
	assert.ErrorIs(t, err, model.ErrDuplicateVar)
}

func TestCheckdUniform(t *testing.T) {
	err := check.Checkd(distribution.Uniform, domain.Runif, []domain.Named{
		{Name: "lower", Domain: domain.Rplusunif.Neg()},
		{Name: "upper", Domain: domain.Rplusunif},
	}, check.WithLogger(discard))
	assert.NoError(t, err)
}

func TestCheckdExponential(t *testing.T) {
	err := check.Checkd(distribution.Exponential, domain.Rplus,
		[]domain.Named{{Name: "lam", Domain: domain.Rplus}},
		check.WithLogger(discard))
	assert.NoError(t, err)
}

func TestCheckdVector(t *testing.T) {
	value := domain.MustVectors([][]float64{{.5, 1}}, []float64{0, 0},
		[]float64{50, 50})

	err := check.Checkd(distribution.Exponential, value,
		[]domain.Named{{Name: "lam", Domain: domain.Rplus}},
		check.WithChecks(gradient()))
	assert.NoError(t, err)

	m, err := check.BuildModel(distribution.Exponential, value,
		[]domain.Named{{Name: "lam", Domain: domain.Rplus}}, nil)
	require.NoError(t, err)
	defer m.Close()

	// Support conditions hold per element
	lp, err := m.LogProb(model.Point{"lam": {2}, check.ValueName: {.5, 1}})
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Log(2)-2*1.5, lp, 1e-12)

	lp, err = m.LogProb(model.Point{"lam": {2}, check.ValueName: {.5, -1}})
	require.NoError(t, err)
	assert.True(t, math.IsInf(lp, -1), "expected: -Inf received: %v", lp)
}

func TestCheckdNoChecks(t *testing.T) {
	// An unnormalized density passes when no checks are run
	extras := distribution.Extras{"logp": distribution.LogProbFunc(unnormalized)}

	err := check.Checkd(distribution.DensityDist, domain.R, nil,
		check.WithExtras(extras), check.WithChecks())
	assert.NoError(t, err)

	err = check.Checkd(distribution.DensityDist, domain.R, nil,
		check.WithExtras(extras), check.WithLogger(discard))
	assert.ErrorIs(t, err, check.ErrMismatch)
}

func TestNormalizationDiscrete(t *testing.T) {
	value := domain.MustScalars([]int{0, 1, 2, 100})
	m, err := check.BuildModel(distribution.Poisson, value, []domain.Named{
		{Name: "mu", Domain: domain.MustScalars([]float64{0, .5, 3, 10, 20})},
	}, nil)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.Var(check.ValueName)
	require.NoError(t, err)
	params := []domain.Named{
		{Name: "mu", Domain: domain.MustScalars([]float64{0, .5, 3, 10, 20})},
	}
	assert.NoError(t, normalization().Check(m, v, value, params))

	// A range too short to hold the mass of the distribution
	short := domain.MustScalars([]int{0, 1, 5})
	err = normalization().Check(m, v, short, params)
	var mismatch *check.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, check.NameNormalization, mismatch.Check)
	assert.Equal(t, -1, mismatch.Index)
	assert.Less(t, mismatch.Got, 1.0)
}

func TestNormalGradient(t *testing.T) {
	value := domain.MustScalars([]float64{math.Inf(-1), .4, math.Inf(1)})
	params := []domain.Named{
		{Name: "mu", Domain: domain.MustScalars(
			[]float64{math.Inf(-1), 0, math.Inf(1)})},
		{Name: "tau", Domain: domain.MustScalars(
			[]float64{0, 1, math.Inf(1)})},
	}

	m, err := check.BuildModel(distribution.Normal, value, params, nil)
	require.NoError(t, err)
	defer m.Close()

	grad, err := m.DLogProb(m.TestPoint())
	require.NoError(t, err)
	assert.InDelta(t, -.4, grad[check.ValueName][0], 1e-6)
	assert.InDelta(t, .4, grad["mu"][0], 1e-6)
	assert.InDelta(t, .5-.4*.4/2, grad["tau"][0], 1e-6)

	v, err := m.Var(check.ValueName)
	require.NoError(t, err)
	assert.NoError(t, gradient().Check(m, v, value, params))
}

func TestCheckdLaplaceAtLocation(t *testing.T) {
	// Values coincide with locations, where |x - μ| has a kink
	locs := domain.MustScalars([]float64{math.Inf(-1), -2.1, 0, .01,
		math.Inf(1)})
	params := []domain.Named{
		{Name: "mu", Domain: locs},
		{Name: "b", Domain: domain.MustScalars([]float64{0, .01, 1,
			math.Inf(1)})},
	}

	err := check.Checkd(distribution.Laplace, locs, params,
		check.WithChecks(gradient()))
	assert.NoError(t, err)

	m, err := check.BuildModel(distribution.Laplace, locs, params, nil)
	require.NoError(t, err)
	defer m.Close()

	grad, err := m.DLogProb(model.Point{
		"mu": {-2.1}, "b": {.01}, check.ValueName: {-2.1},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, grad["mu"][0])
	assert.Equal(t, 0.0, grad[check.ValueName][0])
	assert.InDelta(t, -100, grad["b"][0], 1e-9)
}

func TestPotential(t *testing.T) {
	b := model.NewBuilder()
	v, err := b.Declare(check.ValueName, distribution.Uniform,
		distribution.NewArgs(map[string]*G.Node{
			"lower": b.Constant(0),
			"upper": b.Constant(2),
		}), model.WithTestValue(domain.Unit.At(0)))
	require.NoError(t, err)

	// Uniform on [0, 2] times 2 is a density on [0, 1]
	require.NoError(t, b.AddPotential(b.Constant(math.Log(2))))

	m, err := b.Build()
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, normalization().Check(m, v, domain.Unit, nil))
	assert.NoError(t, gradient().Check(m, v, domain.Unit, nil))
}

func TestCheckdBounded(t *testing.T) {
	mu := domain.MustScalars([]float64{math.Inf(-1), -1, 0, 2.1,
		math.Inf(1)})
	tau := domain.MustScalars([]float64{0, .5, 1, 2, math.Inf(1)})
	params := []domain.Named{{Name: "mu", Domain: mu}, {Name: "tau", Domain: tau}}
	fam := distribution.Bounded(distribution.Normal, -.2, math.Inf(1))

	err := check.Checkd(fam, domain.Rplus, params,
		check.WithChecks(gradient()))
	assert.NoError(t, err)

	// Truncation does not renormalize
	err = check.Checkd(fam, domain.Rplus, params,
		check.WithChecks(normalization()))
	assert.ErrorIs(t, err, check.ErrMismatch)
}

func TestUnsupportedShape(t *testing.T) {
	m, err := check.BuildModel(distribution.Flat, domain.PdMatrix2, nil, nil)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.Var(check.ValueName)
	require.NoError(t, err)
	err = normalization().Check(m, v, domain.PdMatrix2, nil)
	assert.ErrorIs(t, err, check.ErrUnsupportedShape)
}

func TestNormalizationVector(t *testing.T) {
	identity := domain.MustMatrices([][][]float64{{{1, 0}, {0, 1}}})
	params := []domain.Named{
		{Name: "mu", Domain: domain.MustVectors([][]float64{{0, 0}, {.5, -.5}},
			nil, nil, domain.Unbounded())},
		{Name: "tau", Domain: identity},
	}

	m, err := check.BuildModel(distribution.MvNormal, domain.Vec2small,
		params, nil)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.Var(check.ValueName)
	require.NoError(t, err)
	assert.NoError(t, normalization().Check(m, v, domain.Vec2small, params))
}

func TestMismatch(t *testing.T) {
	extras := distribution.Extras{"logp": distribution.LogProbFunc(unnormalized)}

	err := check.Checkd(distribution.DensityDist, domain.R, nil,
		check.WithExtras(extras),
		check.WithChecks(normalization(), &check.Gradient{
			Tolerance:      1.5e-6,
			Differentiator: wrongDiff{},
			Logger:         discard,
		}),
	)
	require.ErrorIs(t, err, check.ErrMismatch)
	assert.Contains(t, err.Error(), check.NameNormalization+":")
	assert.Contains(t, err.Error(), check.NameGradient+":")

	var mismatch *check.MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, check.NameNormalization, mismatch.Check)
	assert.InDelta(t, math.Sqrt(math.Pi), mismatch.Got, 1e-6)
	assert.Equal(t, 1.0, mismatch.Want)
}

func TestGradientSkipped(t *testing.T) {
	extras := distribution.Extras{"logp": distribution.LogProbFunc(unnormalized)}

	// No differentiator
	err := check.Checkd(distribution.DensityDist, domain.R, nil,
		check.WithExtras(extras),
		check.WithChecks(&check.Gradient{Tolerance: 1.5e-6, Logger: discard}))
	assert.NoError(t, err)

	// No continuous variables
	err = check.Checkd(distribution.ConstantDist, domain.I,
		[]domain.Named{{Name: "c", Domain: domain.I}},
		check.WithChecks(&check.Gradient{
			Tolerance:      1.5e-6,
			Differentiator: wrongDiff{},
			Logger:         discard,
		}))
	assert.NoError(t, err)
}

func TestCheckdBuildError(t *testing.T) {
	err := check.Checkd(distribution.Normal, domain.R,
		[]domain.Named{{Name: "mu", Domain: domain.R}},
		check.WithLogger(discard))
	assert.ErrorIs(t, err, distribution.ErrMissingArg)
}

func TestMismatchError(t *testing.T) {
	err := &check.MismatchError{
		Check:     check.NameGradient,
		Point:     model.Point{"value": {1}, "mu": {0}},
		Index:     0,
		Want:      1,
		Got:       2,
		Tolerance: 1.5e-6,
	}
	assert.ErrorIs(t, err, check.ErrMismatch)
	assert.Equal(t, "dlogp: element 0 at {mu: 0, value: 1}: expected 1 but "+
		"got 2 (tolerance 1.5e-06)", err.Error())
}

func TestRun(t *testing.T) {
	b := model.NewBuilder()
	x, err := b.Declare("x", distribution.Normal, distribution.NewArgs(
		map[string]*G.Node{
			"mu":  b.Constant(1),
			"tau": b.Constant(1),
		}))
	require.NoError(t, err)
	require.NoError(t, b.AddPotential(G.Must(G.Neg(G.Must(G.Square(x.Node))))))

	m, err := b.Build()
	require.NoError(t, err)
	defer m.Close()

	results, err := check.Run(m, x, domain.R, nil, []check.Checker{
		gradient(),
		&check.Gradient{
			Tolerance:      1.5e-6,
			Differentiator: wrongDiff{},
			Logger:         discard,
		},
	}, discard)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, check.NameGradient, results[0].Check)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, check.ErrMismatch)
}

func TestRunMissingDomain(t *testing.T) {
	m, err := check.BuildModel(distribution.Exponential, domain.Rplus,
		[]domain.Named{{Name: "lam", Domain: domain.Rplus}}, nil)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.Var(check.ValueName)
	require.NoError(t, err)
	_, err = check.Run(m, v, domain.Rplus, nil, nil, discard)
	assert.ErrorIs(t, err, model.ErrUnknownVar)
}

func TestNormalizationVector3(t *testing.T) {
	params := []domain.Named{
		{Name: "lower", Domain: domain.MustScalars([]float64{-1},
			domain.Unbounded())},
		{Name: "upper", Domain: domain.MustScalars([]float64{1},
			domain.Unbounded())},
	}
	value := domain.MustVectors([][]float64{{0, .5, -.5}},
		[]float64{-1, -1, -1}, []float64{1, 1, 1})

	m, err := check.BuildModel(distribution.Uniform, value, params, nil)
	require.NoError(t, err)
	defer m.Close()

	v, err := m.Var(check.ValueName)
	require.NoError(t, err)

	coarse := &check.Normalization{
		Tolerance: 1.5e-7,
		Quadrature: quadrature.Settings{
			Order:        2,
			Panels:       1,
			AbsTol:       1e-9,
			MaxIntervals: 16,
		},
		Logger: discard,
	}
	assert.NoError(t, coarse.Check(m, v, value, params))

	// Half of the mass lies outside of a box that is cut at zero
	half := domain.MustVectors([][]float64{{0, .5, .5}},
		[]float64{-1, -1, 0}, []float64{1, 1, 1})
	err = coarse.Check(m, v, half, params)
	var mismatch *check.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.InDelta(t, .5, mismatch.Got, 1e-9)
}
