package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/pmc"
	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// LogProbFunc computes a log-density in a graph
type LogProbFunc func(x *G.Node) (*G.Node, error)

// DensityDist is a continuous distribution with an arbitrary
// log-density, given as the extra argument "logp" of type LogProbFunc
// or func(*G.Node) (*G.Node, error). The log-density is summed over the
// elements of the value.
func DensityDist(args Args) (Distribution, error) {
	extra, err := args.Extra("logp")
	if err != nil {
		return nil, fmt.Errorf("densityDist: %w", err)
	}

	var logp LogProbFunc
	switch f := extra.(type) {
	case LogProbFunc:
		logp = f
	case func(*G.Node) (*G.Node, error):
		logp = f
	default:
		return nil, fmt.Errorf("densityDist: expected logp to be a "+
			"LogProbFunc but got %T", extra)
	}

	return &densityDist{logp: logp}, nil
}

type densityDist struct {
	logp LogProbFunc
}

func (d *densityDist) Kind() domain.Kind { return domain.Continuous }

// LogProb implements the Distribution interface
func (d *densityDist) LogProb(x *G.Node) (*G.Node, error) {
	logp, err := d.logp(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	if logp.Graph() != x.Graph() {
		return nil, fmt.Errorf("logProb: log-density is not in the graph " +
			"of its value")
	}

	if !logp.IsScalar() {
		logp, err = G.Sum(logp)
		if err != nil {
			return nil, fmt.Errorf("logProb: %v", err)
		}
	}
	return logp, nil
}

// Bounded returns a Family whose distributions are those of f restricted
// to [lower, upper]. Either bound may be infinite. The restricted
// distribution is not renormalized.
func Bounded(f Family, lower, upper float64) Family {
	return func(args Args) (Distribution, error) {
		if !(lower <= upper) {
			return nil, fmt.Errorf("bounded: invalid bounds [%v, %v]",
				lower, upper)
		}

		d, err := f(args)
		if err != nil {
			return nil, fmt.Errorf("bounded: %w", err)
		}
		return &bounded{Distribution: d, lower: lower, upper: upper}, nil
	}
}

type bounded struct {
	Distribution
	lower, upper float64
}

// LogProb implements the Distribution interface
func (b *bounded) LogProb(x *G.Node) (*G.Node, error) {
	logp, err := b.Distribution.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	var conds []*G.Node
	if !math.IsInf(b.lower, -1) {
		cond, err := G.Sub(x, constant(x, b.lower))
		if err != nil {
			return nil, fmt.Errorf("logProb: %v", err)
		}
		conds = append(conds, cond)
	}
	if !math.IsInf(b.upper, 1) {
		cond, err := G.Sub(constant(x, b.upper), x)
		if err != nil {
			return nil, fmt.Errorf("logProb: %v", err)
		}
		conds = append(conds, cond)
	}

	return pmc.Bound(logp, conds...)
}
