package distribution

import (
	"github.com/samuelfneumann/pmc"
	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// lnFactorial returns log(k!) = lnΓ(k + 1)
func lnFactorial(k *G.Node) *G.Node {
	return G.Must(pmc.Lgamma(G.Must(G.Add(k, constant(k, 1)))))
}

// lnChoose returns log(n choose k)
func lnChoose(n, k *G.Node) *G.Node {
	nMinusK := G.Must(G.Sub(n, k))

	c := G.Must(G.Sub(lnFactorial(n), lnFactorial(k)))
	return G.Must(G.Sub(c, lnFactorial(nMinusK)))
}

// DiscreteUniform is the uniform distribution over the integers in
// [lower, upper]
var DiscreteUniform = family("discreteUniform", domain.Discrete,
	[]string{"lower", "upper"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		lower, upper := p[0], p[1]

		count := G.Must(G.Sub(upper, lower))
		count = G.Must(G.Add(count, constant(k, 1)))
		logp := G.Must(G.Sub(zeros(k), G.Must(G.Log(count))))

		return logp, []*G.Node{
			G.Must(G.Sub(k, lower)),
			G.Must(G.Sub(upper, k)),
		}
	},
)

// Binomial is the distribution of the number of successes in n
// independent trials with success probability p
var Binomial = family("binomial", domain.Discrete, []string{"n", "p"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		n, prob := p[0], p[1]
		oneMinusP := G.Must(G.Sub(constant(k, 1), prob))
		nMinusK := G.Must(G.Sub(n, k))

		successes := G.Must(G.HadamardProd(k, G.Must(G.Log(prob))))
		failures := G.Must(G.HadamardProd(nMinusK,
			G.Must(G.Log(oneMinusP))))

		logp := G.Must(G.Add(lnChoose(n, k), successes))
		logp = G.Must(G.Add(logp, failures))

		return logp, []*G.Node{k, nMinusK, prob, oneMinusP}
	},
)

// BetaBin is the beta-binomial distribution: a binomial whose success
// probability is beta distributed with parameters alpha and beta
var BetaBin = family("betaBin", domain.Discrete,
	[]string{"alpha", "beta", "n"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		alpha, beta, n := p[0], p[1], p[2]
		nMinusK := G.Must(G.Sub(n, k))

		post := G.Must(pmc.Betaln(G.Must(G.Add(k, alpha)),
			G.Must(G.Add(nMinusK, beta))))
		prior := G.Must(pmc.Betaln(alpha, beta))

		logp := G.Must(G.Add(lnChoose(n, k), post))
		logp = G.Must(G.Sub(logp, prior))

		return logp, []*G.Node{k, nMinusK, alpha, beta}
	},
)

// Bernoulli is the distribution of a single trial with success
// probability p
var Bernoulli = family("bernoulli", domain.Discrete, []string{"p"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		prob := p[0]
		one := constant(k, 1)
		oneMinusP := G.Must(G.Sub(one, prob))
		oneMinusK := G.Must(G.Sub(one, k))

		logp := G.Must(G.HadamardProd(k, G.Must(G.Log(prob))))
		logp = G.Must(G.Add(logp, G.Must(G.HadamardProd(oneMinusK,
			G.Must(G.Log(oneMinusP))))))

		return logp, []*G.Node{k, oneMinusK, prob, oneMinusP}
	},
)

// Poisson is the Poisson distribution with rate mu
//
//	log p(k) = k log μ - μ - log k!
var Poisson = family("poisson", domain.Discrete, []string{"mu"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		mu := p[0]
		return poissonLogProbs(k, mu), []*G.Node{k, mu}
	},
)

func poissonLogProbs(k, mu *G.Node) *G.Node {
	logp := G.Must(G.HadamardProd(k, G.Must(G.Log(mu))))
	logp = G.Must(G.Sub(logp, mu))
	return G.Must(G.Sub(logp, lnFactorial(k)))
}

// Geometric is the distribution of the number of trials up to and
// including the first success, with success probability p
//
//	log p(k) = log p + (k - 1) log(1 - p),  k ≥ 1
var Geometric = family("geometric", domain.Discrete, []string{"p"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		prob := p[0]
		one := constant(k, 1)
		oneMinusP := G.Must(G.Sub(one, prob))
		kMinusOne := G.Must(G.Sub(k, one))

		logp := G.Must(G.HadamardProd(kMinusOne, G.Must(G.Log(oneMinusP))))
		logp = G.Must(G.Add(G.Must(G.Log(prob)), logp))

		return logp, []*G.Node{kMinusOne, prob, oneMinusP}
	},
)

// NegativeBinomial is the negative binomial distribution with mean mu
// and dispersion alpha
//
//	log p(k) = lnΓ(k + α) - log k! - lnΓ(α)
//	         + α log(α / (μ + α)) + k log(μ / (μ + α))
var NegativeBinomial = family("negativeBinomial", domain.Discrete,
	[]string{"mu", "alpha"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		mu, alpha := p[0], p[1]
		total := G.Must(G.Add(mu, alpha))

		norm := G.Must(pmc.Lgamma(G.Must(G.Add(k, alpha))))
		norm = G.Must(G.Sub(norm, lnFactorial(k)))
		norm = G.Must(G.Sub(norm, G.Must(pmc.Lgamma(alpha))))

		a := G.Must(G.Log(G.Must(G.HadamardDiv(alpha, total))))
		a = G.Must(G.HadamardProd(alpha, a))
		m := G.Must(G.Log(G.Must(G.HadamardDiv(mu, total))))
		m = G.Must(G.HadamardProd(k, m))

		logp := G.Must(G.Add(norm, a))
		logp = G.Must(G.Add(logp, m))

		return logp, []*G.Node{k, mu, alpha}
	},
)

// ConstantDist places all of its mass on the value c
var ConstantDist = family("constantDist", domain.Discrete, []string{"c"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		c := p[0]

		logp := G.Must(G.Add(zeros(k), zeros(c)))

		return logp, []*G.Node{
			G.Must(G.Sub(k, c)),
			G.Must(G.Sub(c, k)),
		}
	},
)

// ZeroInflatedPoisson is a Poisson distribution with rate theta when
// z is 1, and a point mass at 0 when z is 0
var ZeroInflatedPoisson = family("zeroInflatedPoisson", domain.Discrete,
	[]string{"theta", "z"},
	func(k *G.Node, p []*G.Node) (*G.Node, []*G.Node) {
		theta, z := p[0], p[1]
		one := constant(k, 1)

		logp := G.Must(G.HadamardProd(z, poissonLogProbs(k, theta)))

		// k(z - 1) ≥ 0 only admits k = 0 when z = 0
		inflated := G.Must(G.HadamardProd(k, G.Must(G.Sub(z, one))))

		return logp, []*G.Node{
			k,
			theta,
			z,
			G.Must(G.Sub(one, z)),
			inflated,
		}
	},
)
