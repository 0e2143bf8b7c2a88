// Package pmc provides the Gorgonia operations needed to express
// log-densities of probability distributions with symbolic gradients
package pmc

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Lgamma computes the element-wise natural log of the absolute value
// of the gamma function. Its gradient is the digamma function.
func Lgamma(x *G.Node) (*G.Node, error) {
	retVal, err := G.ApplyOp(newLgammaOp(), x)
	if err != nil {
		return nil, fmt.Errorf("lgamma: %v", err)
	}

	return retVal, nil
}

// Abs computes the element-wise absolute value. Its gradient is the
// sign function, which is zero at zero.
func Abs(x *G.Node) (*G.Node, error) {
	retVal, err := G.ApplyOp(&absOp{}, x)
	if err != nil {
		return nil, fmt.Errorf("abs: %v", err)
	}

	return retVal, nil
}

// Betaln computes the log of the beta function,
//
//	ln B(a, b) = lnΓ(a) + lnΓ(b) - lnΓ(a + b)
func Betaln(a, b *G.Node) (*G.Node, error) {
	lnA, err := Lgamma(a)
	if err != nil {
		return nil, fmt.Errorf("betaln: %v", err)
	}
	lnB, err := Lgamma(b)
	if err != nil {
		return nil, fmt.Errorf("betaln: %v", err)
	}

	sum, err := G.Add(a, b)
	if err != nil {
		return nil, fmt.Errorf("betaln: %v", err)
	}
	lnSum, err := Lgamma(sum)
	if err != nil {
		return nil, fmt.Errorf("betaln: %v", err)
	}

	retVal, err := G.Add(lnA, lnB)
	if err != nil {
		return nil, fmt.Errorf("betaln: %v", err)
	}
	return G.Sub(retVal, lnSum)
}

// Bound returns logp if every element of every condition is
// non-negative, and -Inf otherwise. The gradient flows through logp
// only; conditions receive a zero gradient.
//
// Conditions are expressed as differences, e.g. the support x >= lower
// is the condition x - lower:
//
//	logp = Bound(logp, x - lower, upper - x)
func Bound(logp *G.Node, conds ...*G.Node) (*G.Node, error) {
	if len(conds) == 0 {
		return logp, nil
	}

	op, err := newBoundOp(len(conds))
	if err != nil {
		return nil, fmt.Errorf("bound: %v", err)
	}

	children := make(G.Nodes, 0, len(conds)+1)
	children = append(children, logp)
	children = append(children, conds...)

	retVal, err := G.ApplyOp(op, children...)
	if err != nil {
		return nil, fmt.Errorf("bound: %v", err)
	}

	return retVal, nil
}

// LogDet computes the natural log of the determinant of a square
// matrix node
func LogDet(x *G.Node) (*G.Node, error) {
	if x.Dims() != 2 {
		return nil, fmt.Errorf("logDet: expected a matrix but got %v "+
			"dimensions", x.Dims())
	}

	retVal, err := G.ApplyOp(&logDetOp{}, x)
	if err != nil {
		return nil, fmt.Errorf("logDet: %v", err)
	}

	return retVal, nil
}
