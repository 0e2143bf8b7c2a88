package pmc

import (
	"fmt"
	"hash/fnv"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// SimpleHash constructs the 32-bit FNV-1a hash of a Gorgonia Op.
// Taken from Gorgonia.
func SimpleHash(op G.Op) uint32 {
	h := fnv.New32a()
	op.WriteHash(h)
	return h.Sum32()
}

// CheckArity returns an error if the number of inputs does not match
// the arity of op. Ops with negative arity accept any number of inputs.
func CheckArity(op G.Op, inputs int) error {
	if inputs != op.Arity() && op.Arity() >= 0 {
		return fmt.Errorf("%v has an arity of %d. Got %d instead", op,
			op.Arity(), inputs)
	}
	return nil
}

// floats returns the float64 data backing a scalar or tensor value.
// The returned slice aliases tensor storage, so callers must not
// modify it.
func floats(v G.Value) ([]float64, error) {
	switch v := v.(type) {
	case *G.F64:
		return []float64{float64(*v)}, nil

	case tensor.Tensor:
		switch data := v.Data().(type) {
		case []float64:
			return data, nil
		case float64:
			return []float64{data}, nil
		}
		return nil, fmt.Errorf("expected float64 tensor but got %v", v.Dtype())
	}

	return nil, fmt.Errorf("expected *F64 or tensor but got %T", v)
}

// like returns a new value of the same kind and shape as v backed by
// data
func like(v G.Value, data []float64) G.Value {
	if _, ok := v.(*G.F64); ok {
		return G.NewF64(data[0])
	}

	return tensor.New(
		tensor.WithShape(v.Shape().Clone()...),
		tensor.WithBacking(data),
	)
}
