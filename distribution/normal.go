package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// Normal is the univariate normal distribution parameterized by its
// mean mu and precision tau = 1/σ²:
//
//	log p(x) = ½ log(τ / 2π) - ½ τ (x - μ)²
//
// If x is a tensor, each element is an independent draw. The mean and
// precision may be scalars, or tensors of the same shape as x, in which
// case each element of x has its own distribution.
func Normal(args Args) (Distribution, error) {
	nodes, err := args.nodes("mu", "tau")
	if err != nil {
		return nil, fmt.Errorf("normal: %w", err)
	}

	return iid(newNormal(nodes[0], nodes[1]))
}

type normal struct {
	mu  *G.Node
	tau *G.Node
}

func newNormal(mu, tau *G.Node) (*normal, error) {
	if !mu.IsScalar() && !tau.IsScalar() && !mu.Shape().Eq(tau.Shape()) {
		return nil, fmt.Errorf("newNormal: expected mu and tau to "+
			"have the same shape but got %v and %v", mu.Shape(),
			tau.Shape())
	}

	if mu.Dtype() != tau.Dtype() {
		return nil, fmt.Errorf("newNormal: expected mu and tau to "+
			"have the same data type but got %v and %v", mu.Dtype(),
			tau.Dtype())
	}

	return &normal{mu: mu, tau: tau}, nil
}

func (n *normal) Kind() domain.Kind { return domain.Continuous }

// LogProbs implements the Elementwise interface
func (n *normal) LogProbs(x *G.Node) (*G.Node, []*G.Node, error) {
	logp, err := normalLogProbs(x, n.mu, n.tau)
	if err != nil {
		return nil, nil, fmt.Errorf("logProbs: %v", err)
	}

	return logp, []*G.Node{n.tau}, nil
}

// normalLogProbs returns ½ log(τ / 2π) - ½ τ (x - μ)²
func normalLogProbs(x, mu, tau *G.Node) (*G.Node, error) {
	half := constant(x, 0.5)
	lnTwoPi := constant(x, math.Log(2*math.Pi))

	if !x.IsScalar() && !mu.IsScalar() && !x.Shape().Eq(mu.Shape()) {
		msg := "expected shape to match distribution shape %v but got %v"
		return nil, fmt.Errorf(msg, mu.Shape(), x.Shape())
	}

	d := G.Must(G.Sub(x, mu))
	d = G.Must(G.Square(d))
	d = G.Must(G.HadamardProd(tau, d))

	norm := G.Must(G.Log(tau))
	norm = G.Must(G.Sub(norm, lnTwoPi))

	logp := G.Must(G.Sub(norm, d))
	return G.HadamardProd(half, logp)
}
