// Package catalog lists the distributions whose self-consistency is
// checked, together with the Domains of their values and parameters.
package catalog

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/samuelfneumann/pmc"
	"github.com/samuelfneumann/pmc/check"
	"github.com/samuelfneumann/pmc/distribution"
	"github.com/samuelfneumann/pmc/domain"
	"github.com/samuelfneumann/pmc/model"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Entry describes one distribution to check. An Entry either names a
// Family, whose model is built by check.BuildModel, or builds its own
// model with Model.
type Entry struct {
	Name string

	Family distribution.Family
	Params []domain.Named
	Extras distribution.Extras

	// Model builds a custom model and returns it with the variable
	// whose distribution is checked. Every other variable of the model
	// must have a Domain in Params.
	Model func() (*model.Model, *model.Var, error)

	// Value is the Domain of the checked variable
	Value *domain.Domain

	// Checks names the checks to run, nil means all
	Checks []string

	// Heavy entries take long to check
	Heavy bool
}

// Run runs the checks of the entry with the given configuration
func (e Entry) Run(c check.Config, logger *slog.Logger) ([]check.Result,
	error) {
	logger = loggerFor(logger, e.Name)
	checks, err := c.Checks(logger, e.Checks...)
	if err != nil {
		return nil, fmt.Errorf("run: %v: %v", e.Name, err)
	}

	m, value, err := e.build()
	if err != nil {
		return nil, fmt.Errorf("run: %v: %w", e.Name, err)
	}
	defer m.Close()

	results, err := check.Run(m, value, e.Value, e.Params, checks, logger)
	if err != nil {
		return nil, fmt.Errorf("run: %v: %w", e.Name, err)
	}
	return results, nil
}

// build returns the model of the entry and its checked variable
func (e Entry) build() (*model.Model, *model.Var, error) {
	if e.Model != nil {
		return e.Model()
	}

	m, err := check.BuildModel(e.Family, e.Value, e.Params, e.Extras)
	if err != nil {
		return nil, nil, err
	}
	value, err := m.Var(check.ValueName)
	if err != nil {
		m.Close()
		return nil, nil, err
	}
	return m, value, nil
}

// CheckNames returns the names of the checks the entry runs
func (e Entry) CheckNames() []string {
	if e.Checks == nil {
		return []string{check.NameNormalization, check.NameGradient}
	}
	return append([]string(nil), e.Checks...)
}

// All returns every entry of the catalogue sorted by name
func All() []Entry {
	out := make([]Entry, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Lookup returns the entry with the given name
func Lookup(name string) (Entry, error) {
	for _, e := range registry {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("lookup: unknown entry %q", name)
}

func loggerFor(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("entry", name)
}

func named(kv ...any) []domain.Named {
	params := make([]domain.Named, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		params = append(params, domain.Named{
			Name:   kv[i].(string),
			Domain: kv[i+1].(*domain.Domain),
		})
	}
	return params
}

var inf = math.Inf(1)

var (
	// Degrees of freedom small enough to give tails too heavy to
	// integrate accurately are left out
	nuT = domain.MustScalars([]float64{0, 1, 2, 5, 20, inf})

	muMvNormal2 = domain.MustScalars([]float64{-inf, -1, 0, 2.1, inf})
	muMvNormal3 = domain.MustScalars([]float64{-inf, 0, 1, inf})

	// Positive reals with the lower bound of a normal truncated at -.2
	rplus2 = domain.MustScalars([]float64{-.2, -.19, -.1, 0, .5, 1, inf})
)

var registry = []Entry{
	{
		Name:   "unif",
		Family: distribution.Uniform,
		Value:  domain.Runif,
		Params: named("lower", domain.Rplusunif.Neg(),
			"upper", domain.Rplusunif),
	},
	{
		Name:   "discrete_unif",
		Family: distribution.DiscreteUniform,
		Value:  domain.Rdunif,
		Params: named("lower", domain.Rplusdunif.Neg(),
			"upper", domain.Rplusdunif),
	},
	{
		Name:   "flat",
		Family: distribution.Flat,
		Value:  domain.Runif,
		Checks: []string{check.NameGradient},
	},
	{
		Name:   "normal",
		Family: distribution.Normal,
		Value:  domain.R,
		Params: named("mu", domain.R, "tau", domain.Rplus),
	},
	{
		Name:   "beta",
		Family: distribution.Beta,
		Value:  domain.Unit,
		Params: named("alpha", domain.Rplusbig, "beta", domain.Rplusbig),
		Heavy:  true,
	},
	{
		Name:   "exponential",
		Family: distribution.Exponential,
		Value:  domain.Rplus,
		Params: named("lam", domain.Rplus),
	},
	{
		Name:   "geometric",
		Family: distribution.Geometric,
		Value:  domain.NatBig,
		Params: named("p", domain.Unit),
		Heavy:  true,
	},
	{
		Name:   "negative_binomial",
		Family: distribution.NegativeBinomial,
		Value:  domain.Nat,
		Params: named("mu", domain.Rplusbig, "alpha", domain.Rplusbig),
		Heavy:  true,
	},
	{
		Name:   "laplace",
		Family: distribution.Laplace,
		Value:  domain.R,
		Params: named("mu", domain.R, "b", domain.Rplus),
	},
	{
		Name:   "lognormal",
		Family: distribution.Lognormal,
		Value:  domain.Rplus,
		Params: named("mu", domain.R, "tau", domain.Rplus),
		Checks: []string{check.NameGradient},
	},
	{
		Name:   "t",
		Family: distribution.T,
		Value:  domain.R,
		Params: named("nu", nuT, "mu", domain.R, "lam", domain.Rplus),
		Heavy:  true,
	},
	{
		Name:   "cauchy",
		Family: distribution.Cauchy,
		Value:  domain.R,
		Params: named("alpha", domain.R, "beta", domain.Rplusbig),
	},
	{
		Name:   "gamma",
		Family: distribution.Gamma,
		Value:  domain.Rplus,
		Params: named("alpha", domain.Rplusbig, "beta", domain.Rplusbig),
		Heavy:  true,
	},
	{
		Name:   "tpos",
		Family: distribution.Tpos,
		Value:  domain.Rplus,
		Params: named("nu", domain.Rplus, "mu", domain.R, "lam", domain.Rplus),
		Checks: []string{check.NameGradient},
		Heavy:  true,
	},
	{
		Name:   "binomial",
		Family: distribution.Binomial,
		Value:  domain.Nat,
		Params: named("n", domain.NatSmall, "p", domain.Unit),
	},
	{
		Name:   "betabin",
		Family: distribution.BetaBin,
		Value:  domain.Nat,
		Params: named("alpha", domain.Rplus, "beta", domain.Rplus,
			"n", domain.NatSmall),
		Heavy: true,
	},
	{
		Name:   "bernoulli",
		Family: distribution.Bernoulli,
		Value:  domain.Bool,
		Params: named("p", domain.Unit),
	},
	{
		Name:   "poisson",
		Family: distribution.Poisson,
		Value:  domain.Nat,
		Params: named("mu", domain.Rplus),
	},
	{
		Name:   "constantdist",
		Family: distribution.ConstantDist,
		Value:  domain.I,
		Params: named("c", domain.I),
	},
	{
		Name:   "zeroinflatedpoisson",
		Family: distribution.ZeroInflatedPoisson,
		Value:  domain.Nat,
		Params: named("theta", domain.Rplus, "z", domain.Bool),
	},
	{
		Name:   "mvnormal2",
		Family: distribution.MvNormal,
		Value:  domain.Vec2small,
		Params: named("mu", muMvNormal2, "tau", domain.PdMatrix2),
		Checks: []string{check.NameGradient, check.NameNormalization},
		Heavy:  true,
	},
	{
		Name:   "mvnormal3",
		Family: distribution.MvNormal,
		Value:  domain.Vec3small,
		Params: named("mu", muMvNormal3, "tau", domain.PdMatrix3),
		Checks: []string{check.NameGradient},
		Heavy:  true,
	},
	{
		Name:   "densitydist",
		Family: distribution.DensityDist,
		Value:  domain.R,
		Extras: distribution.Extras{
			"logp": distribution.LogProbFunc(laplaceLogProb),
		},
	},
	{
		Name:   "addpotential",
		Model:  potentialModel,
		Value:  domain.R,
		Checks: []string{check.NameGradient},
	},
	{
		Name:   "bound",
		Model:  boundModel,
		Value:  rplus2,
		Checks: []string{check.NameGradient},
	},
	{
		Name:   "wishart",
		Model:  wishartModel,
		Value:  domain.PdMatrix2,
		Checks: []string{check.NameGradient},
	},
}

// laplaceLogProb is the log-density of a Laplace distribution with
// location and scale .5
func laplaceLogProb(x *G.Node) (*G.Node, error) {
	g := x.Graph()
	half := g.Constant(G.NewF64(.5))

	dev, err := pmc.Abs(G.Must(G.Sub(x, half)))
	if err != nil {
		return nil, fmt.Errorf("laplaceLogProb: %v", err)
	}
	return G.Neg(G.Must(G.Div(dev, half)))
}

// potentialModel returns a model with x ~ N(1, 1) and the potential -x²
func potentialModel() (*model.Model, *model.Var, error) {
	b := model.NewBuilder()
	x, err := b.Declare("x", distribution.Normal, distribution.NewArgs(
		map[string]*G.Node{"mu": b.Constant(1), "tau": b.Constant(1)}))
	if err != nil {
		return nil, nil, fmt.Errorf("potentialModel: %v", err)
	}

	if err := b.AddPotential(G.Must(G.Neg(G.Must(G.Square(x.Node))))); err != nil {
		return nil, nil, fmt.Errorf("potentialModel: %v", err)
	}

	m, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("potentialModel: %v", err)
	}
	return m, x, nil
}

// boundModel returns a model with x ~ N(1, 1) truncated below at -.2
func boundModel() (*model.Model, *model.Var, error) {
	b := model.NewBuilder()
	positive := distribution.Bounded(distribution.Normal, -.2, inf)
	x, err := b.Declare("x", positive, distribution.NewArgs(
		map[string]*G.Node{"mu": b.Constant(1), "tau": b.Constant(1)}),
		model.WithTestValue(domain.Value{1}))
	if err != nil {
		return nil, nil, fmt.Errorf("boundModel: %v", err)
	}

	m, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("boundModel: %v", err)
	}
	return m, x, nil
}

// wishartModel returns a model with a 2×2 matrix x following a Wishart
// distribution with 3 degrees of freedom and identity scale
func wishartModel() (*model.Model, *model.Var, error) {
	b := model.NewBuilder()
	args := distribution.NewArgs(map[string]*G.Node{"n": b.Constant(3)})
	args.Extras = distribution.Extras{
		"V": mat.NewDiagDense(2, []float64{1, 1}),
		"p": 2,
	}

	x, err := b.Declare("wishart_test", distribution.Wishart, args,
		model.WithShape(tensor.Shape{2, 2}),
		model.WithTestValue(domain.PdMatrix2.At(0)))
	if err != nil {
		return nil, nil, fmt.Errorf("wishartModel: %v", err)
	}

	m, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("wishartModel: %v", err)
	}
	return m, x, nil
}
