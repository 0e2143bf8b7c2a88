package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/pmc"
	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// logProbsFunc returns the element-wise log-density of x given the
// parameters, together with the support conditions
type logProbsFunc func(x *G.Node, params []*G.Node) (*G.Node, []*G.Node)

// elemDist is an Elementwise distribution whose log-density is given
// by a function of the value and parameters
type elemDist struct {
	name   string
	kind   domain.Kind
	params []*G.Node
	logp   logProbsFunc
}

func (e *elemDist) Kind() domain.Kind { return e.kind }

// LogProbs implements the Elementwise interface
func (e *elemDist) LogProbs(x *G.Node) (*G.Node, []*G.Node, error) {
	logp, conds := e.logp(x, e.params)
	if logp == nil {
		return nil, nil, fmt.Errorf("logProbs: %v: no log-density", e.name)
	}
	return logp, conds, nil
}

// family returns a Family whose distributions are built from the named
// node arguments by an element-wise log-density
func family(name string, kind domain.Kind, params []string,
	logp logProbsFunc) Family {
	return func(args Args) (Distribution, error) {
		nodes, err := args.nodes(params...)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}

		return NewIID(&elemDist{
			name:   name,
			kind:   kind,
			params: nodes,
			logp:   logp,
		}), nil
	}
}

// zeros returns x·0, a node of the shape of x that keeps x in the
// gradient's path
func zeros(x *G.Node) *G.Node {
	return G.Must(G.HadamardProd(x, constant(x, 0)))
}

// Uniform is the continuous uniform distribution on [lower, upper]
var Uniform = family("uniform", domain.Continuous,
	[]string{"lower", "upper"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		lower, upper := p[0], p[1]

		width := G.Must(G.Sub(upper, lower))
		logp := G.Must(G.Sub(zeros(x), G.Must(G.Log(width))))

		return logp, []*G.Node{
			G.Must(G.Sub(x, lower)),
			G.Must(G.Sub(upper, x)),
		}
	},
)

// Flat is the improper uniform distribution over the real line
var Flat = family("flat", domain.Continuous, nil,
	func(x *G.Node, _ []*G.Node) (*G.Node, []*G.Node) {
		return zeros(x), nil
	},
)

// Beta is the beta distribution on [0, 1]
//
//	log p(x) = (α - 1) log x + (β - 1) log(1 - x) - ln B(α, β)
var Beta = family("beta", domain.Continuous, []string{"alpha", "beta"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		alpha, beta := p[0], p[1]
		one := constant(x, 1)

		oneMinusX := G.Must(G.Sub(one, x))
		a := G.Must(G.HadamardProd(G.Must(G.Sub(alpha, one)),
			G.Must(G.Log(x))))
		b := G.Must(G.HadamardProd(G.Must(G.Sub(beta, one)),
			G.Must(G.Log(oneMinusX))))

		logp := G.Must(G.Add(a, b))
		logp = G.Must(G.Sub(logp, G.Must(pmc.Betaln(alpha, beta))))

		return logp, []*G.Node{x, oneMinusX, alpha, beta}
	},
)

// Exponential is the exponential distribution with rate lam
//
//	log p(x) = log λ - λx
var Exponential = family("exponential", domain.Continuous, []string{"lam"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		lam := p[0]

		logp := G.Must(G.Sub(G.Must(G.Log(lam)),
			G.Must(G.HadamardProd(lam, x))))

		return logp, []*G.Node{x, lam}
	},
)

// Laplace is the Laplace distribution with location mu and scale b
//
//	log p(x) = -log 2b - |x - μ| / b
var Laplace = family("laplace", domain.Continuous, []string{"mu", "b"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		mu, b := p[0], p[1]
		two := constant(x, 2)

		dev := G.Must(pmc.Abs(G.Must(G.Sub(x, mu))))
		dev = G.Must(G.HadamardDiv(dev, b))

		norm := G.Must(G.Log(G.Must(G.HadamardProd(two, b))))
		logp := G.Must(G.Neg(G.Must(G.Add(norm, dev))))

		return logp, []*G.Node{b}
	},
)

// Lognormal is the distribution of exp(y) for normally distributed y
// with mean mu and precision tau
var Lognormal = family("lognormal", domain.Continuous, []string{"mu", "tau"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		mu, tau := p[0], p[1]

		lnX := G.Must(G.Log(x))
		logp := G.Must(normalLogProbs(lnX, mu, tau))
		logp = G.Must(G.Sub(logp, lnX))

		return logp, []*G.Node{x, tau}
	},
)

// T is Student's t-distribution with nu degrees of freedom, location mu
// and precision lam
var T = family("t", domain.Continuous, []string{"nu", "mu", "lam"}, tLogProbs)

// Tpos is Student's t-distribution restricted to the non-negative
// reals. It is not renormalized.
var Tpos = family("tpos", domain.Continuous, []string{"nu", "mu", "lam"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		logp, conds := tLogProbs(x, p)
		return logp, append(conds, x)
	},
)

// tLogProbs returns
//
//	lnΓ((ν+1)/2) - lnΓ(ν/2) + ½ log(λ / νπ) - (ν+1)/2 log(1 + λ(x-μ)²/ν)
func tLogProbs(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
	nu, mu, lam := p[0], p[1], p[2]
	one := constant(x, 1)
	half := constant(x, 0.5)
	pi := constant(x, math.Pi)

	nuPlusOneHalf := G.Must(G.HadamardProd(half, G.Must(G.Add(nu, one))))
	nuHalf := G.Must(G.HadamardProd(half, nu))

	norm := G.Must(G.Sub(G.Must(pmc.Lgamma(nuPlusOneHalf)),
		G.Must(pmc.Lgamma(nuHalf))))
	scale := G.Must(G.HadamardDiv(lam, G.Must(G.HadamardProd(nu, pi))))
	norm = G.Must(G.Add(norm, G.Must(G.HadamardProd(half,
		G.Must(G.Log(scale))))))

	d := G.Must(G.Square(G.Must(G.Sub(x, mu))))
	d = G.Must(G.HadamardProd(lam, d))
	d = G.Must(G.HadamardDiv(d, nu))
	d = G.Must(G.Log(G.Must(G.Add(one, d))))
	d = G.Must(G.HadamardProd(nuPlusOneHalf, d))

	return G.Must(G.Sub(norm, d)), []*G.Node{lam, nu}
}

// Cauchy is the Cauchy distribution with location alpha and scale beta
//
//	log p(x) = -log π - log β - log(1 + ((x - α) / β)²)
var Cauchy = family("cauchy", domain.Continuous, []string{"alpha", "beta"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		alpha, beta := p[0], p[1]
		one := constant(x, 1)
		lnPi := constant(x, math.Log(math.Pi))

		z := G.Must(G.HadamardDiv(G.Must(G.Sub(x, alpha)), beta))
		z = G.Must(G.Log(G.Must(G.Add(one, G.Must(G.Square(z))))))

		norm := G.Must(G.Add(lnPi, G.Must(G.Log(beta))))
		logp := G.Must(G.Neg(G.Must(G.Add(norm, z))))

		return logp, []*G.Node{beta}
	},
)

// Gamma is the gamma distribution with shape alpha and rate beta
//
//	log p(x) = α log β - lnΓ(α) + (α - 1) log x - βx
var Gamma = family("gamma", domain.Continuous, []string{"alpha", "beta"},
	func(x *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		alpha, beta := p[0], p[1]
		one := constant(x, 1)

		norm := G.Must(G.HadamardProd(alpha, G.Must(G.Log(beta))))
		norm = G.Must(G.Sub(norm, G.Must(pmc.Lgamma(alpha))))

		shape := G.Must(G.HadamardProd(G.Must(G.Sub(alpha, one)),
			G.Must(G.Log(x))))
		rate := G.Must(G.HadamardProd(beta, x))

		logp := G.Must(G.Add(norm, shape))
		logp = G.Must(G.Sub(logp, rate))

		return logp, []*G.Node{x, alpha, beta}
	},
)
