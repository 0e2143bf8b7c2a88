// Package distribution provides probability distributions whose
// log-densities are expressed as Gorgonia graphs, so that their
// gradients can be computed symbolically.
package distribution

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// ErrMissingArg is returned when a family is constructed without one of
// its required arguments
var ErrMissingArg = errors.New("missing argument")

// Distribution is a probability distribution
type Distribution interface {
	// LogProb returns a scalar node holding the log of the joint
	// probability density or mass of all elements of x. Values outside
	// of the support have a log-density of -Inf.
	LogProb(x *G.Node) (*G.Node, error)

	// Kind returns whether the distribution is over continuous or
	// discrete values
	Kind() domain.Kind
}

// Family constructs a Distribution from its named arguments
type Family func(Args) (Distribution, error)

// Extras holds deterministic, non-node arguments of a family, such as
// the log-density function of a DensityDist or the scale matrix of a
// Wishart
type Extras map[string]any

// Args holds the named arguments of a family
type Args struct {
	Nodes  map[string]*G.Node
	Extras Extras
}

// NewArgs returns Args holding the given nodes and no extras
func NewArgs(nodes map[string]*G.Node) Args {
	return Args{Nodes: nodes}
}

// Node returns the node argument with the given name
func (a Args) Node(name string) (*G.Node, error) {
	n, ok := a.Nodes[name]
	if !ok || n == nil {
		return nil, fmt.Errorf("node: %w: %q (have %v)", ErrMissingArg, name,
			a.names())
	}
	return n, nil
}

// Extra returns the extra argument with the given name
func (a Args) Extra(name string) (any, error) {
	e, ok := a.Extras[name]
	if !ok {
		return nil, fmt.Errorf("extra: %w: %q", ErrMissingArg, name)
	}
	return e, nil
}

// nodes returns the node arguments with the given names in order
func (a Args) nodes(names ...string) ([]*G.Node, error) {
	out := make([]*G.Node, len(names))
	for i, name := range names {
		n, err := a.Node(name)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (a Args) names() []string {
	names := make([]string, 0, len(a.Nodes))
	for name := range a.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// constant returns a float64 scalar constant in the graph of x
func constant(x *G.Node, v float64) *G.Node {
	return x.Graph().Constant(G.NewF64(v))
}
