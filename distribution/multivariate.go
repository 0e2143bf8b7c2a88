package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/pmc"
	"github.com/samuelfneumann/pmc/domain"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MvNormal is the multivariate normal distribution over vectors with
// mean mu and precision matrix tau:
//
//	log p(x) = ½ log|τ| - k/2 log 2π - ½ (x - μ)ᵀ τ (x - μ)
//
// The mean may be a scalar, in which case it is shared by every
// element.
func MvNormal(args Args) (Distribution, error) {
	nodes, err := args.nodes("mu", "tau")
	if err != nil {
		return nil, fmt.Errorf("mvNormal: %w", err)
	}
	mu, tau := nodes[0], nodes[1]

	if tau.Dims() != 2 || tau.Shape()[0] != tau.Shape()[1] {
		return nil, fmt.Errorf("mvNormal: expected tau to be a square "+
			"matrix but got shape %v", tau.Shape())
	}
	if !mu.IsScalar() && (mu.Dims() != 1 || mu.Shape()[0] != tau.Shape()[0]) {
		return nil, fmt.Errorf("mvNormal: expected mu to be a scalar or "+
			"vector of length %v but got shape %v", tau.Shape()[0],
			mu.Shape())
	}

	return &mvNormal{mu: mu, tau: tau}, nil
}

type mvNormal struct {
	mu  *G.Node
	tau *G.Node
}

func (m *mvNormal) Kind() domain.Kind { return domain.Continuous }

// LogProb implements the Distribution interface
func (m *mvNormal) LogProb(x *G.Node) (*G.Node, error) {
	k := m.tau.Shape()[0]
	if x.Dims() != 1 || x.Shape()[0] != k {
		return nil, fmt.Errorf("logProb: expected a vector of length %v "+
			"but got shape %v", k, x.Shape())
	}

	half := constant(x, 0.5)
	norm := constant(x, float64(k)/2*math.Log(2*math.Pi))

	d, err := G.Sub(x, m.mu)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	td, err := G.Mul(m.tau, d)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	quad, err := G.Mul(d, td)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	logDet, err := pmc.LogDet(m.tau)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	logp := G.Must(G.Sub(logDet, quad))
	logp = G.Must(G.HadamardProd(half, logp))
	return G.Sub(logp, norm)
}

// Wishart is the Wishart distribution over p×p positive definite
// matrices with n degrees of freedom and scale matrix V:
//
//	log p(X) = (n - p - 1)/2 log|X| - ½ tr(V⁻¹X)
//	         - np/2 log 2 - n/2 log|V| - lnΓₚ(n/2)
//
// The degrees of freedom are the node argument "n". The scale matrix is
// the extra argument "V", a mat.Matrix. The extra argument "p", if
// given, must agree with the size of V.
func Wishart(args Args) (Distribution, error) {
	n, err := args.Node("n")
	if err != nil {
		return nil, fmt.Errorf("wishart: %w", err)
	}

	extra, err := args.Extra("V")
	if err != nil {
		return nil, fmt.Errorf("wishart: %w", err)
	}
	v, ok := extra.(mat.Matrix)
	if !ok {
		return nil, fmt.Errorf("wishart: expected V to be a mat.Matrix but "+
			"got %T", extra)
	}

	p, c := v.Dims()
	if p != c {
		return nil, fmt.Errorf("wishart: expected V to be square but got "+
			"%v×%v", p, c)
	}
	if extra, err := args.Extra("p"); err == nil {
		if want, ok := extra.(int); !ok || want != p {
			return nil, fmt.Errorf("wishart: p (%v) does not match the "+
				"size of V (%v)", extra, p)
		}
	}

	var lu mat.LU
	lu.Factorize(v)
	logDetV, sign := lu.LogDet()
	if sign <= 0 {
		return nil, fmt.Errorf("wishart: V is not positive definite")
	}

	var vInv mat.Dense
	if err := vInv.Inverse(v); err != nil {
		return nil, fmt.Errorf("wishart: could not invert V: %v", err)
	}

	// tr(V⁻¹X) = Σᵢⱼ (V⁻ᵀ)ᵢⱼ Xᵢⱼ
	vInvT := make([]float64, 0, p*p)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			vInvT = append(vInvT, vInv.At(j, i))
		}
	}

	return &wishart{
		n:       n,
		p:       p,
		logDetV: logDetV,
		vInvT:   vInvT,
	}, nil
}

type wishart struct {
	n       *G.Node
	p       int
	logDetV float64
	vInvT   []float64
}

func (w *wishart) Kind() domain.Kind { return domain.Continuous }

// LogProb implements the Distribution interface
func (w *wishart) LogProb(x *G.Node) (retVal *G.Node, err error) {
	if x.Dims() != 2 || x.Shape()[0] != w.p || x.Shape()[1] != w.p {
		return nil, fmt.Errorf("logProb: expected a %v×%v matrix but got "+
			"shape %v", w.p, w.p, x.Shape())
	}

	defer func() {
		if r := recover(); r != nil {
			retVal, err = nil, fmt.Errorf("logProb: %v", r)
		}
	}()

	g := x.Graph()
	half := constant(x, 0.5)
	p := constant(x, float64(w.p))
	one := constant(x, 1)

	vInvT := g.Constant(tensor.New(
		tensor.WithShape(w.p, w.p),
		tensor.WithBacking(append([]float64(nil), w.vInvT...)),
	))

	logDetX := G.Must(pmc.LogDet(x))
	trace := G.Must(G.Sum(G.Must(G.HadamardProd(vInvT, x))))

	// (n - p - 1)/2 log|X| - ½ tr(V⁻¹X)
	dof := G.Must(G.Sub(G.Must(G.Sub(w.n, p)), one))
	logp := G.Must(G.HadamardProd(dof, logDetX))
	logp = G.Must(G.Sub(logp, trace))
	logp = G.Must(G.HadamardProd(half, logp))

	// np/2 log 2 + n/2 log|V|
	norm := constant(x, float64(w.p)*math.Ln2+w.logDetV)
	norm = G.Must(G.HadamardProd(G.Must(G.HadamardProd(half, w.n)), norm))
	logp = G.Must(G.Sub(logp, norm))

	halfN := G.Must(G.HadamardProd(half, w.n))
	logp = G.Must(G.Sub(logp, mvLgamma(halfN, w.p)))

	// Degrees of freedom must exceed p - 1
	return pmc.Bound(logp, G.Must(G.Sub(G.Must(G.Add(w.n, one)), p)))
}

// mvLgamma returns the log of the multivariate gamma function
//
//	lnΓₚ(a) = p(p-1)/4 log π + Σⱼ lnΓ(a + (1 - j)/2),  j = 1..p
func mvLgamma(a *G.Node, p int) *G.Node {
	retVal := constant(a, float64(p*(p-1))/4*math.Log(math.Pi))
	for j := 1; j <= p; j++ {
		shifted := G.Must(G.Add(a, constant(a, float64(1-j)/2)))
		retVal = G.Must(G.Add(retVal, G.Must(pmc.Lgamma(shifted))))
	}
	return retVal
}
