package pmc

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	"gonum.org/v1/gonum/mathext"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// lgammaOp is the element-wise natural log of the absolute value of
// the gamma function
type lgammaOp struct{}

func newLgammaOp() *lgammaOp {
	return &lgammaOp{}
}

func (l *lgammaOp) Arity() int { return 1 }

func (l *lgammaOp) Type() hm.Type {
	// All pointwise unary operations have this type:
	// op :: (Arithable a) => a -> a
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (l *lgammaOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (l *lgammaOp) Do(values ...G.Value) (G.Value, error) {
	if err := CheckArity(l, len(values)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	x, err := floats(values[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	out := make([]float64, len(x))
	for i := range x {
		out[i], _ = math.Lgamma(x[i])
	}

	return like(values[0], out), nil
}

func (l *lgammaOp) ReturnsPtr() bool { return false }

func (l *lgammaOp) CallsExtern() bool { return false }

func (l *lgammaOp) OverwritesInput() int { return -1 }

func (l *lgammaOp) String() string { return "Lgamma" }

// WriteHash writes the hash of the receiver to a hash struct
func (l *lgammaOp) WriteHash(h hash.Hash) { fmt.Fprint(h, l.String()) }

// Hashcode returns the hash code of the receiver
func (l *lgammaOp) Hashcode() uint32 { return SimpleHash(l) }

func (l *lgammaOp) DiffWRT(inputs int) []bool {
	if inputs != 1 {
		panic(fmt.Sprintf("lgamma operator only supports one input, got %d "+
			"instead", inputs))
	}
	return []bool{true}
}

// SymDiff returns grad ⊙ ψ(x), where ψ is the digamma function
func (l *lgammaOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 1)
	nodes[0], err = G.ApplyOp(&lgammaDiffOp{}, inputs[0], grad)

	return nodes, err
}

// lgammaDiffOp multiplies an incoming gradient by the digamma function
// of the lgamma input
type lgammaDiffOp struct{}

func (l *lgammaDiffOp) Arity() int { return 2 }

func (l *lgammaDiffOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a, a)
}

func (l *lgammaDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(l, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (l *lgammaDiffOp) Do(values ...G.Value) (G.Value, error) {
	if err := CheckArity(l, len(values)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	x, err := floats(values[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	grad, err := floats(values[1])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	if len(grad) != len(x) && len(grad) != 1 {
		return nil, fmt.Errorf("do: gradient has %d elements for input "+
			"with %d elements", len(grad), len(x))
	}

	out := make([]float64, len(x))
	for i := range x {
		g := grad[0]
		if len(grad) > 1 {
			g = grad[i]
		}
		out[i] = g * mathext.Digamma(x[i])
	}

	return like(values[0], out), nil
}

func (l *lgammaDiffOp) ReturnsPtr() bool { return false }

func (l *lgammaDiffOp) CallsExtern() bool { return false }

func (l *lgammaDiffOp) OverwritesInput() int { return -1 }

func (l *lgammaDiffOp) String() string { return "LgammaDiff()" }

func (l *lgammaDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, l.String()) }

func (l *lgammaDiffOp) Hashcode() uint32 { return SimpleHash(l) }
