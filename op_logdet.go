package pmc

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// logDetOp computes the natural log of the determinant of a square
// matrix. A negative determinant yields NaN.
type logDetOp struct{}

func (l *logDetOp) Arity() int { return 1 }

func (l *logDetOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(G.TensorType{Dims: 2, Of: a}, a)
}

func (l *logDetOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	shape, ok := inputs[0].(tensor.Shape)
	if !ok || len(shape) != 2 || shape[0] != shape[1] {
		return nil, fmt.Errorf("inferShape: expected square matrix but "+
			"got shape %v", inputs[0])
	}

	return tensor.ScalarShape(), nil
}

func (l *logDetOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(l, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	m, err := toDense(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	var lu mat.LU
	lu.Factorize(m)
	logDet, sign := lu.LogDet()
	if sign < 0 {
		logDet = math.NaN()
	}

	return G.NewF64(logDet), nil
}

func (l *logDetOp) ReturnsPtr() bool { return false }

func (l *logDetOp) CallsExtern() bool { return false }

func (l *logDetOp) OverwritesInput() int { return -1 }

func (l *logDetOp) String() string { return "LogDet()" }

func (l *logDetOp) WriteHash(h hash.Hash) { fmt.Fprint(h, l.String()) }

func (l *logDetOp) Hashcode() uint32 { return SimpleHash(l) }

func (l *logDetOp) DiffWRT(inputs int) []bool { return []bool{true} }

// SymDiff returns grad · X⁻ᵀ
func (l *logDetOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 1)
	nodes[0], err = G.ApplyOp(&logDetDiffOp{}, inputs[0], grad)

	return nodes, err
}

type logDetDiffOp struct{}

func (l *logDetDiffOp) Arity() int { return 2 }

func (l *logDetDiffOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	m := G.TensorType{Dims: 2, Of: a}
	return hm.NewFnType(m, a, m)
}

func (l *logDetDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return inputs[0].(tensor.Shape), nil
}

func (l *logDetDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(l, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	m, err := toDense(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	grad, err := floats(inputs[1])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, fmt.Errorf("do: could not invert matrix: %v", err)
	}

	n, _ := m.Dims()
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = grad[0] * inv.At(j, i)
		}
	}

	return tensor.New(
		tensor.WithShape(n, n),
		tensor.WithBacking(out),
	), nil
}

func (l *logDetDiffOp) ReturnsPtr() bool { return false }

func (l *logDetDiffOp) CallsExtern() bool { return false }

func (l *logDetDiffOp) OverwritesInput() int { return -1 }

func (l *logDetDiffOp) String() string { return "LogDetDiff()" }

func (l *logDetDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, l.String()) }

func (l *logDetDiffOp) Hashcode() uint32 { return SimpleHash(l) }

// toDense copies a square matrix value into a gonum matrix
func toDense(v G.Value) (*mat.Dense, error) {
	shape := v.Shape()
	if len(shape) != 2 || shape[0] != shape[1] {
		return nil, fmt.Errorf("expected square matrix but got shape %v",
			shape)
	}

	data, err := floats(v)
	if err != nil {
		return nil, err
	}

	backing := make([]float64, len(data))
	copy(backing, data)

	return mat.NewDense(shape[0], shape[1], backing), nil
}
