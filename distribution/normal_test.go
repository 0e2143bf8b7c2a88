package distribution_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/pmc/distribution"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// newNode returns a node holding v, which may be a float64, a []float64
// or a *mat.Dense
func newNode(t *testing.T, g *G.ExprGraph, name string, v any) *G.Node {
	t.Helper()

	switch v := v.(type) {
	case float64:
		return G.NewScalar(g, tensor.Float64, G.WithName(name),
			G.WithValue(v))

	case []float64:
		vT := tensor.NewDense(
			tensor.Float64,
			[]int{len(v)},
			tensor.WithBacking(append([]float64(nil), v...)),
		)
		return G.NewVector(g, tensor.Float64, G.WithShape(len(v)),
			G.WithName(name), G.WithValue(vT))

	case *mat.Dense:
		r, c := v.Dims()
		backing := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			backing = append(backing, v.RawRowView(i)...)
		}
		vT := tensor.NewDense(
			tensor.Float64,
			[]int{r, c},
			tensor.WithBacking(backing),
		)
		return G.NewMatrix(g, tensor.Float64, G.WithShape(r, c),
			G.WithName(name), G.WithValue(vT))
	}

	t.Fatalf("newNode: unsupported value type %T", v)
	return nil
}

// logProb evaluates the log-density of fam at x with the given node
// parameters and extras
func logProb(t *testing.T, fam distribution.Family, x any,
	params map[string]any, extras distribution.Extras) float64 {
	t.Helper()

	g := G.NewGraph()
	nodes := make(map[string]*G.Node, len(params))
	for name, v := range params {
		nodes[name] = newNode(t, g, name, v)
	}
	xNode := newNode(t, g, "x", x)

	d, err := fam(distribution.Args{Nodes: nodes, Extras: extras})
	require.NoError(t, err)

	logp, err := d.LogProb(xNode)
	require.NoError(t, err)
	require.True(t, logp.IsScalar(), "log-density must be a scalar but "+
		"has shape %v", logp.Shape())

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	return logp.Value().Data().(float64)
}

func TestNormalLogProb(t *testing.T) {
	const threshold float64 = 1e-10
	const tests int = 30

	src := rand.NewSource(11)
	rng := rand.New(src)

	for i := 0; i < tests; i++ {
		mu := (rng.Float64() - 0.5) * 4
		tau := math.Exp(rng.Float64()*4 - 2)
		dist := distuv.Normal{Mu: mu, Sigma: 1 / math.Sqrt(tau), Src: src}
		x := dist.Rand()

		got := logProb(t, distribution.Normal, x,
			map[string]any{"mu": mu, "tau": tau}, nil)
		want := dist.LogProb(x)
		if math.Abs(got-want) > threshold {
			t.Errorf("expected: %v received: %v for x: %v mu: %v tau: %v",
				want, got, x, mu, tau)
		}
	}
}

func TestNormalLogProbIID(t *testing.T) {
	const threshold float64 = 1e-10

	xs := []float64{-2.1, -0.01, 0.4, 1, 2.1}
	dist := distuv.Normal{Mu: 0.5, Sigma: 1 / math.Sqrt(1.5)}

	var want float64
	for _, x := range xs {
		want += dist.LogProb(x)
	}

	got := logProb(t, distribution.Normal, xs,
		map[string]any{"mu": 0.5, "tau": 1.5}, nil)
	if math.Abs(got-want) > threshold {
		t.Errorf("expected: %v received: %v", want, got)
	}

	// Element-wise parameters
	mus := []float64{0, 1, 2, 3, 4}
	want = 0
	for i, x := range xs {
		want += distuv.Normal{Mu: mus[i], Sigma: 1}.LogProb(x)
	}

	got = logProb(t, distribution.Normal, xs,
		map[string]any{"mu": mus, "tau": 1.0}, nil)
	if math.Abs(got-want) > threshold {
		t.Errorf("expected: %v received: %v", want, got)
	}
}

func TestNormalOutsideSupport(t *testing.T) {
	got := logProb(t, distribution.Normal, 0.4,
		map[string]any{"mu": 0.0, "tau": -1.0}, nil)
	if !math.IsInf(got, -1) {
		t.Errorf("expected: -Inf received: %v", got)
	}
}

func TestNormalGrad(t *testing.T) {
	const threshold float64 = 1e-12

	g := G.NewGraph()
	x := newNode(t, g, "x", 0.4)
	mu := newNode(t, g, "mu", 0.0)
	tau := newNode(t, g, "tau", 1.0)

	d, err := distribution.Normal(distribution.NewArgs(
		map[string]*G.Node{"mu": mu, "tau": tau}))
	require.NoError(t, err)
	logp, err := d.LogProb(x)
	require.NoError(t, err)

	grads, err := G.Grad(logp, x, mu, tau)
	require.NoError(t, err)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	// ∂/∂x = -τ(x - μ), ∂/∂μ = τ(x - μ), ∂/∂τ = 1/2τ - (x - μ)²/2
	want := []float64{-0.4, 0.4, 0.5 - 0.08}
	for i, grad := range grads {
		got := grad.Value().Data().(float64)
		if math.Abs(got-want[i]) > threshold {
			t.Errorf("expected: %v received: %v for gradient %d", want[i],
				got, i)
		}
	}
}

func TestNormalShapeMismatch(t *testing.T) {
	g := G.NewGraph()
	mu := newNode(t, g, "mu", []float64{0, 1})
	tau := newNode(t, g, "tau", []float64{1, 1, 1})

	_, err := distribution.Normal(distribution.NewArgs(
		map[string]*G.Node{"mu": mu, "tau": tau}))
	require.Error(t, err)

	tau = newNode(t, g, "tau2", 1.0)
	d, err := distribution.Normal(distribution.NewArgs(
		map[string]*G.Node{"mu": mu, "tau": tau}))
	require.NoError(t, err)

	_, err = d.LogProb(newNode(t, g, "x", []float64{0, 1, 2}))
	require.Error(t, err)
}
