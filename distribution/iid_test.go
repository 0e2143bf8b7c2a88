package distribution_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/pmc/distribution"
	"github.com/samuelfneumann/pmc/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// square has log-density -x² on x >= 0
type square struct{}

func (square) Kind() domain.Kind { return domain.Continuous }

func (square) LogProbs(x *G.Node) (*G.Node, []*G.Node, error) {
	logp, err := G.Neg(G.Must(G.Square(x)))
	if err != nil {
		return nil, nil, err
	}
	return logp, []*G.Node{x}, nil
}

func TestIIDLogProb(t *testing.T) {
	shapes := []tensor.Shape{{3}, {2, 3}}
	backings := [][]float64{
		{0.5, 1, 2},
		{0, 0.1, 0.2, 0.3, 0.4, 0.5},
	}

	for i := range shapes {
		g := G.NewGraph()
		xT := tensor.NewDense(
			tensor.Float64,
			shapes[i],
			tensor.WithBacking(append([]float64(nil), backings[i]...)),
		)
		x := G.NewTensor(g, tensor.Float64, len(shapes[i]),
			G.WithShape(shapes[i]...), G.WithValue(xT), G.WithName("x"))

		d := distribution.NewIID(square{})
		logp, err := d.LogProb(x)
		require.NoError(t, err)
		assert.True(t, logp.IsScalar())

		vm := G.NewTapeMachine(g)
		require.NoError(t, vm.RunAll())

		var want float64
		for _, v := range backings[i] {
			want -= v * v
		}
		assert.InDelta(t, want, logp.Value().Data().(float64), 1e-12)
		assert.Equal(t, domain.Continuous, d.Kind())

		vm.Close()
	}
}

func TestIIDLogProbOutsideSupport(t *testing.T) {
	g := G.NewGraph()
	xT := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{0.5, -1, 2}),
	)
	x := G.NewVector(g, tensor.Float64, G.WithShape(3), G.WithValue(xT),
		G.WithName("x"))

	logp, err := distribution.NewIID(square{}).LogProb(x)
	require.NoError(t, err)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	got := logp.Value().Data().(float64)
	assert.True(t, math.IsInf(got, -1), "expected: -Inf received: %v", got)
}
