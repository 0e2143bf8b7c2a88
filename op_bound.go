package pmc

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// boundOp passes a log-density through unchanged when every element of
// every condition input is non-negative, and replaces it with -Inf
// otherwise. NaN conditions count as violated.
type boundOp struct {
	conds int
}

func newBoundOp(conds int) (*boundOp, error) {
	if conds < 1 {
		return nil, fmt.Errorf("newBoundOp: expected at least 1 condition, "+
			"got %v", conds)
	}

	return &boundOp{conds: conds}, nil
}

func (b *boundOp) Arity() int { return b.conds + 1 }

func (b *boundOp) Type() hm.Type {
	// logp :: a, each condition has its own shape. Gorgonia reserves
	// 'b' for the return type during inference, so conditions start at
	// 'c'.
	a := hm.TypeVariable('a')

	types := make([]hm.Type, 0, b.conds+2)
	types = append(types, a)
	for i := 0; i < b.conds; i++ {
		types = append(types, hm.TypeVariable('c'+rune(i)))
	}
	types = append(types, a)

	return hm.NewFnType(types...)
}

func (b *boundOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (b *boundOp) ReturnsPtr() bool { return false }

func (b *boundOp) CallsExtern() bool { return false }

func (b *boundOp) OverwritesInput() int { return -1 }

func (b *boundOp) String() string { return fmt.Sprintf("Bound{%d}()", b.conds) }

// WriteHash writes the hash of the receiver to a hash struct
func (b *boundOp) WriteHash(h hash.Hash) { fmt.Fprint(h, b.String()) }

// Hashcode returns the hash code of the receiver
func (b *boundOp) Hashcode() uint32 { return SimpleHash(b) }

func (b *boundOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(b, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	logp, err := floats(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	out := make([]float64, len(logp))
	if b.satisfied(inputs[1:]) {
		copy(out, logp)
	} else {
		for i := range out {
			out[i] = math.Inf(-1)
		}
	}

	return like(inputs[0], out), nil
}

func (b *boundOp) satisfied(conds []G.Value) bool {
	for _, cond := range conds {
		c, err := floats(cond)
		if err != nil {
			return false
		}
		for _, v := range c {
			if !(v >= 0) {
				return false
			}
		}
	}
	return true
}

func (b *boundOp) DiffWRT(inputs int) []bool {
	diff := make([]bool, inputs)
	for i := range diff {
		diff[i] = true
	}
	return diff
}

// SymDiff passes the gradient through to the log-density. Conditions
// receive a zero gradient.
func (b *boundOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	err := CheckArity(b, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	nodes := make(G.Nodes, len(inputs))
	nodes[0] = grad
	for i := 1; i < len(inputs); i++ {
		nodes[i], err = G.ApplyOp(&zerosLikeOp{}, inputs[i])
		if err != nil {
			return nil, fmt.Errorf("symDiff: %v", err)
		}
	}

	return nodes, nil
}

// zerosLikeOp returns zeros with the shape of its input
type zerosLikeOp struct{}

func (z *zerosLikeOp) Arity() int { return 1 }

func (z *zerosLikeOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (z *zerosLikeOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	return inputs[0].(tensor.Shape), nil
}

func (z *zerosLikeOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(z, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	x, err := floats(inputs[0])
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	return like(inputs[0], make([]float64, len(x))), nil
}

func (z *zerosLikeOp) ReturnsPtr() bool { return false }

func (z *zerosLikeOp) CallsExtern() bool { return false }

func (z *zerosLikeOp) OverwritesInput() int { return -1 }

func (z *zerosLikeOp) String() string { return "ZerosLike()" }

func (z *zerosLikeOp) WriteHash(h hash.Hash) { fmt.Fprint(h, z.String()) }

func (z *zerosLikeOp) Hashcode() uint32 { return SimpleHash(z) }
