package pmc

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// absOp is the element-wise absolute value. Unlike G.Abs, its gradient
// at zero is zero.
type absOp struct{}

func (a *absOp) Arity() int { return 1 }

func (a *absOp) Type() hm.Type {
	t := hm.TypeVariable('a')
	return hm.NewFnType(t, t)
}

func (a *absOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(a, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (a *absOp) Do(values ...G.Value) (G.Value, error) {
	if err := CheckArity(a, len(values)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	x, err := floats(values[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	out := make([]float64, len(x))
	for i := range x {
		out[i] = math.Abs(x[i])
	}

	return like(values[0], out), nil
}

func (a *absOp) ReturnsPtr() bool { return false }

func (a *absOp) CallsExtern() bool { return false }

func (a *absOp) OverwritesInput() int { return -1 }

func (a *absOp) String() string { return "Abs" }

func (a *absOp) WriteHash(h hash.Hash) { fmt.Fprint(h, a.String()) }

func (a *absOp) Hashcode() uint32 { return SimpleHash(a) }

func (a *absOp) DiffWRT(inputs int) []bool {
	if inputs != 1 {
		panic(fmt.Sprintf("abs operator only supports one input, got %d "+
			"instead", inputs))
	}
	return []bool{true}
}

// SymDiff returns grad ⊙ sgn(x)
func (a *absOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	err := CheckArity(a, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, 1)
	nodes[0], err = G.ApplyOp(&absDiffOp{}, inputs[0], grad)

	return nodes, err
}

// absDiffOp multiplies an incoming gradient by the sign of the abs
// input, with sgn(0) = 0
type absDiffOp struct{}

func (a *absDiffOp) Arity() int { return 2 }

func (a *absDiffOp) Type() hm.Type {
	t := hm.TypeVariable('a')
	return hm.NewFnType(t, t, t)
}

func (a *absDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(a, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (a *absDiffOp) Do(values ...G.Value) (G.Value, error) {
	if err := CheckArity(a, len(values)); err != nil {
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

		switch {
		case x[i] > 0:
			out[i] = g
		case x[i] < 0:
			out[i] = -g
		}
	}

	return like(values[0], out), nil
}

func (a *absDiffOp) ReturnsPtr() bool { return false }

func (a *absDiffOp) CallsExtern() bool { return false }

func (a *absDiffOp) OverwritesInput() int { return -1 }

func (a *absDiffOp) String() string { return "AbsDiff()" }

func (a *absDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, a.String()) }

func (a *absDiffOp) Hashcode() uint32 { return SimpleHash(a) }
