package distribution

import (
	"fmt"

	"github.com/samuelfneumann/pmc"
	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// Elementwise is a distribution over a single element. Given a node of
// any shape, it computes the log-density of each element independently.
type Elementwise interface {
	// LogProbs returns the element-wise log-density of x together with
	// the support conditions. Each condition is non-negative wherever
	// the value and parameters lie within the support.
	LogProbs(x *G.Node) (logp *G.Node, conds []*G.Node, err error)

	Kind() domain.Kind
}

// IID treats each element of a value as an independent draw from an
// Elementwise distribution. The joint log-density is the sum of the
// element-wise log-densities, or -Inf if any support condition fails.
type IID struct {
	Elementwise
}

// NewIID returns a new IID
func NewIID(e Elementwise) *IID {
	return &IID{e}
}

// LogProb implements the Distribution interface
func (i *IID) LogProb(x *G.Node) (retVal *G.Node, err error) {
	// Element-wise arithmetic panics on mismatched shapes
	defer func() {
		if r := recover(); r != nil {
			retVal, err = nil, fmt.Errorf("logProb: %v", r)
		}
	}()

	logp, conds, err := i.Elementwise.LogProbs(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not compute element-wise "+
			"log-density: %v", err)
	}

	// Combine event dims
	if !logp.IsScalar() {
		logp, err = G.Sum(logp)
		if err != nil {
			return nil, fmt.Errorf("logProb: could not combine event dims: %v",
				err)
		}
	}

	logp, err = pmc.Bound(logp, conds...)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not bound log-density: %v",
			err)
	}

	return logp, nil
}

// iid adapts an Elementwise constructor error into a Distribution
// constructor error
func iid(e Elementwise, err error) (Distribution, error) {
	if err != nil {
		return nil, err
	}
	return NewIID(e), nil
}
