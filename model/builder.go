// Package model builds probabilistic models as Gorgonia graphs. A model
// is a set of named random variables, each with a distribution whose
// parameters may be other variables, plus optional potential terms. The
// model's log-density is the sum of the log-densities of its variables
// and potentials.
package model

import (
	"fmt"

	"github.com/samuelfneumann/pmc/distribution"
	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Var is a random variable of a model
type Var struct {
	Name  string
	Kind  domain.Kind
	Shape tensor.Shape

	// Test is the value the variable takes when a point does not
	// assign one
	Test domain.Value

	Node *G.Node
	Dist distribution.Distribution
}

// Size returns the number of elements of a value of the variable
func (v *Var) Size() int {
	return domain.Size(v.Shape)
}

func (v *Var) String() string {
	return v.Name
}

// Builder declares the variables of a model. A Builder is not safe for
// concurrent use.
type Builder struct {
	g      *G.ExprGraph
	vars   []*Var
	byName map[string]*Var
	terms  G.Nodes
}

// NewBuilder returns a new Builder over an empty graph
func NewBuilder() *Builder {
	return &Builder{
		g:      G.NewGraph(),
		byName: make(map[string]*Var),
	}
}

// Graph returns the graph variables are declared in
func (b *Builder) Graph() *G.ExprGraph {
	return b.g
}

type declareConfig struct {
	kind    *domain.Kind
	shape   tensor.Shape
	test    domain.Value
	hasTest bool
}

// DeclareOption configures the declaration of a variable
type DeclareOption func(*declareConfig)

// WithKind overrides the kind of the variable, which otherwise is the
// kind of its distribution
func WithKind(k domain.Kind) DeclareOption {
	return func(c *declareConfig) {
		c.kind = &k
	}
}

// WithShape sets the shape of the variable. The default is a scalar.
func WithShape(shape tensor.Shape) DeclareOption {
	return func(c *declareConfig) {
		c.shape = shape.Clone()
	}
}

// WithTestValue sets the test value of the variable. The default is
// all zeros.
func WithTestValue(v domain.Value) DeclareOption {
	return func(c *declareConfig) {
		c.test = v.Clone()
		c.hasTest = true
	}
}

// Declare adds a variable to the model distributed according to the
// family fam with the given arguments
func (b *Builder) Declare(name string, fam distribution.Family,
	args distribution.Args, opts ...DeclareOption) (*Var, error) {
	if _, ok := b.byName[name]; ok {
		return nil, fmt.Errorf("declare: %w: %q", ErrDuplicateVar, name)
	}

	for argName, n := range args.Nodes {
		if n != nil && n.Graph() != b.g {
			return nil, fmt.Errorf("declare: argument %q of %q is not in "+
				"the model's graph", argName, name)
		}
	}

	c := declareConfig{shape: tensor.ScalarShape()}
	for _, opt := range opts {
		opt(&c)
	}

	size := domain.Size(c.shape)
	if !c.hasTest {
		c.test = make(domain.Value, size)
	}
	if len(c.test) != size {
		return nil, fmt.Errorf("declare: %w: test value of %q has %v "+
			"elements but shape %v has %v", ErrShape, name, len(c.test),
			c.shape, size)
	}

	node, err := newNode(b.g, name, c.shape, c.test)
	if err != nil {
		return nil, fmt.Errorf("declare: %v", err)
	}

	dist, err := fam(args)
	if err != nil {
		return nil, fmt.Errorf("declare: %q: %w", name, err)
	}

	logp, err := dist.LogProb(node)
	if err != nil {
		return nil, fmt.Errorf("declare: %q: %v", name, err)
	}

	kind := dist.Kind()
	if c.kind != nil {
		kind = *c.kind
	}

	v := &Var{
		Name:  name,
		Kind:  kind,
		Shape: c.shape,
		Test:  c.test,
		Node:  node,
		Dist:  dist,
	}
	b.vars = append(b.vars, v)
	b.byName[name] = v
	b.terms = append(b.terms, logp)

	return v, nil
}

// Constant returns a scalar constant in the model's graph, for use as a
// fixed distribution argument
func (b *Builder) Constant(v float64) *G.Node {
	return b.g.Constant(G.NewF64(v))
}

// AddPotential adds an arbitrary term to the model's log-density. A
// non-scalar term is summed.
func (b *Builder) AddPotential(term *G.Node) error {
	if term.Graph() != b.g {
		return fmt.Errorf("addPotential: term is not in the model's graph")
	}

	if !term.IsScalar() {
		var err error
		term, err = G.Sum(term)
		if err != nil {
			return fmt.Errorf("addPotential: %v", err)
		}
	}

	b.terms = append(b.terms, term)
	return nil
}

// Build compiles the model. The Builder must not be used afterwards.
func (b *Builder) Build() (*Model, error) {
	if len(b.terms) == 0 {
		return nil, fmt.Errorf("build: model has no variables or potentials")
	}

	logp := b.terms[0]
	for _, term := range b.terms[1:] {
		var err error
		logp, err = G.Add(logp, term)
		if err != nil {
			return nil, fmt.Errorf("build: could not sum log-density "+
				"terms: %v", err)
		}
	}

	var cont []*Var
	var contNodes G.Nodes
	for _, v := range b.vars {
		if v.Kind == domain.Continuous {
			cont = append(cont, v)
			contNodes = append(contNodes, v.Node)
		}
	}

	var grads G.Nodes
	if len(contNodes) > 0 {
		var err error
		grads, err = G.Grad(logp, contNodes...)
		if err != nil {
			return nil, fmt.Errorf("build: could not differentiate "+
				"log-density: %v", err)
		}
	}

	m := &Model{
		g:      b.g,
		vars:   b.vars,
		byName: b.byName,
		cont:   cont,
		logp:   logp,
		grads:  grads,
		logpVM: G.NewTapeMachine(b.g.SubgraphRoots(logp)),
		gradVM: G.NewTapeMachine(b.g),
	}
	b.vars, b.byName, b.terms = nil, nil, nil

	return m, nil
}

// newNode returns an input node of the given shape holding v
func newNode(g *G.ExprGraph, name string, shape tensor.Shape,
	v domain.Value) (*G.Node, error) {
	val, err := toValue(shape, v)
	if err != nil {
		return nil, err
	}

	opts := []G.NodeConsOpt{G.WithName(name), G.WithValue(val)}
	switch len(shape) {
	case 0:
		return G.NewScalar(g, tensor.Float64, opts...), nil
	case 1:
		opts = append(opts, G.WithShape(shape...))
		return G.NewVector(g, tensor.Float64, opts...), nil
	case 2:
		opts = append(opts, G.WithShape(shape...))
		return G.NewMatrix(g, tensor.Float64, opts...), nil
	}

	opts = append(opts, G.WithShape(shape...))
	return G.NewTensor(g, tensor.Float64, len(shape), opts...), nil
}

// toValue converts a flat value into a Gorgonia value of the given
// shape
func toValue(shape tensor.Shape, v domain.Value) (G.Value, error) {
	if len(v) != domain.Size(shape) {
		return nil, fmt.Errorf("toValue: %w: %v elements for shape %v",
			ErrShape, len(v), shape)
	}

	if len(shape) == 0 {
		return G.NewF64(v[0]), nil
	}
	return tensor.NewDense(
		tensor.Float64,
		shape.Clone(),
		tensor.WithBacking(v.Clone()),
	), nil
}
