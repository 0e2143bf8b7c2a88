package model

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/pmc/domain"
	G "gorgonia.org/gorgonia"
)

// Model is a compiled probabilistic model. Evaluating the log-density
// or its gradient runs the model's graph, so a Model is not safe for
// concurrent use.
type Model struct {
	g      *G.ExprGraph
	vars   []*Var
	byName map[string]*Var
	cont   []*Var

	logp  *G.Node
	grads G.Nodes // aligned with cont

	logpVM G.VM
	gradVM G.VM
}

// Vars returns the variables of the model in declaration order
func (m *Model) Vars() []*Var {
	return append([]*Var(nil), m.vars...)
}

// ContinuousVars returns the continuous variables of the model in
// declaration order
func (m *Model) ContinuousVars() []*Var {
	return append([]*Var(nil), m.cont...)
}

// Var returns the variable with the given name
func (m *Model) Var(name string) (*Var, error) {
	v, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("var: %w: %q", ErrUnknownVar, name)
	}
	return v, nil
}

// TestPoint returns the point holding the test value of every variable
func (m *Model) TestPoint() Point {
	pt := make(Point, len(m.vars))
	for _, v := range m.vars {
		pt[v.Name] = v.Test.Clone()
	}
	return pt
}

// LogProb returns the log-density of the model at pt. Variables not in
// pt take their test value.
func (m *Model) LogProb(pt Point) (float64, error) {
	defer m.logpVM.Reset()

	if err := m.set(pt); err != nil {
		return 0, fmt.Errorf("logProb: %w", err)
	}
	if err := m.logpVM.RunAll(); err != nil {
		return 0, fmt.Errorf("logProb: %v", err)
	}

	return scalar(m.logp.Value())
}

// DLogProb returns the gradient of the log-density of the model at pt
// with respect to each continuous variable. Variables not in pt take
// their test value.
func (m *Model) DLogProb(pt Point) (Point, error) {
	grad := make(Point, len(m.cont))
	if len(m.cont) == 0 {
		return grad, nil
	}

	defer m.gradVM.Reset()

	if err := m.set(pt); err != nil {
		return nil, fmt.Errorf("dLogProb: %w", err)
	}
	if err := m.gradVM.RunAll(); err != nil {
		return nil, fmt.Errorf("dLogProb: %v", err)
	}

	for i, v := range m.cont {
		data, err := flat(m.grads[i].Value())
		if err != nil {
			return nil, fmt.Errorf("dLogProb: gradient of %q: %v", v.Name,
				err)
		}
		grad[v.Name] = data
	}
	return grad, nil
}

// Close releases the resources held by the model's machines
func (m *Model) Close() error {
	return errors.Join(m.logpVM.Close(), m.gradVM.Close())
}

// set binds the value of each variable for the next run
func (m *Model) set(pt Point) error {
	for name := range pt {
		if _, ok := m.byName[name]; !ok {
			return fmt.Errorf("set: %w: %q", ErrUnknownVar, name)
		}
	}

	for _, v := range m.vars {
		val, ok := pt[v.Name]
		if !ok {
			val = v.Test
		}

		gv, err := toValue(v.Shape, val)
		if err != nil {
			return fmt.Errorf("set: %q: %w", v.Name, err)
		}
		if err := G.Let(v.Node, gv); err != nil {
			return fmt.Errorf("set: %q: %v", v.Name, err)
		}
	}
	return nil
}

func scalar(v G.Value) (float64, error) {
	data, err := flat(v)
	if err != nil {
		return 0, err
	}
	if len(data) != 1 {
		return 0, fmt.Errorf("scalar: expected 1 element but got %v",
			len(data))
	}
	return data[0], nil
}

// flat returns a copy of the data of a float64 Gorgonia value
func flat(v G.Value) (domain.Value, error) {
	if v == nil {
		return nil, fmt.Errorf("flat: no value")
	}

	switch data := v.Data().(type) {
	case float64:
		return domain.Value{data}, nil
	case []float64:
		return domain.Value(data).Clone(), nil
	}
	return nil, fmt.Errorf("flat: unsupported data type %T", v.Data())
}
