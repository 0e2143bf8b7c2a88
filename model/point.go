package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samuelfneumann/pmc/domain"
)

// Point assigns a value to some variables of a model by name
type Point map[string]domain.Value

// Clone returns a deep copy of the point
func (p Point) Clone() Point {
	out := make(Point, len(p))
	for name, v := range p {
		out[name] = v.Clone()
	}
	return out
}

func (p Point) String() string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		v := p[name]
		if len(v) == 1 {
			fmt.Fprintf(&b, "%v: %v", name, v[0])
		} else {
			fmt.Fprintf(&b, "%v: %v", name, []float64(v))
		}
	}
	b.WriteString("}")
	return b.String()
}

// slot is the location of one variable in a flat vector
type slot struct {
	name   string
	offset int
	size   int
}

// Ordering lays out a list of variables contiguously in a flat vector
type Ordering struct {
	slots []slot
	size  int
}

// NewOrdering returns an Ordering over vars, in order
func NewOrdering(vars ...*Var) Ordering {
	var o Ordering
	for _, v := range vars {
		o.slots = append(o.slots, slot{
			name:   v.Name,
			offset: o.size,
			size:   v.Size(),
		})
		o.size += v.Size()
	}
	return o
}

// Size returns the length of the flat vector
func (o Ordering) Size() int {
	return o.size
}

// Names returns the names of the ordered variables
func (o Ordering) Names() []string {
	names := make([]string, len(o.slots))
	for i, s := range o.slots {
		names[i] = s.name
	}
	return names
}

// Bijection converts between points and flat vectors. Only the ordered
// variables are held in the vector. All other variables take their
// value from a base point.
type Bijection struct {
	ordering Ordering
	base     Point
}

// NewBijection returns a new Bijection over the ordering, with values
// of unordered variables taken from base
func NewBijection(o Ordering, base Point) *Bijection {
	return &Bijection{ordering: o, base: base.Clone()}
}

// Ordering returns the ordering of the flat vector
func (b *Bijection) Ordering() Ordering {
	return b.ordering
}

// Map returns the flat vector of the ordered variables of pt. Ordered
// variables missing from pt take their value from the base point.
func (b *Bijection) Map(pt Point) ([]float64, error) {
	x := make([]float64, b.ordering.size)
	for _, s := range b.ordering.slots {
		v, ok := pt[s.name]
		if !ok {
			v, ok = b.base[s.name]
		}
		if !ok {
			return nil, fmt.Errorf("map: %w: no value for %q", ErrUnknownVar,
				s.name)
		}
		if len(v) != s.size {
			return nil, fmt.Errorf("map: %w: %q has %v elements, expected %v",
				ErrShape, s.name, len(v), s.size)
		}
		copy(x[s.offset:], v)
	}
	return x, nil
}

// Rmap returns the base point with the ordered variables replaced by
// their values in x
func (b *Bijection) Rmap(x []float64) (Point, error) {
	if len(x) != b.ordering.size {
		return nil, fmt.Errorf("rmap: %w: vector has %v elements, expected "+
			"%v", ErrShape, len(x), b.ordering.size)
	}

	pt := b.base.Clone()
	for _, s := range b.ordering.slots {
		pt[s.name] = domain.Value(x[s.offset : s.offset+s.size]).Clone()
	}
	return pt, nil
}

// MapFunc returns f as a function of the flat vector
func (b *Bijection) MapFunc(f func(Point) (float64, error)) func(
	[]float64) (float64, error) {
	return func(x []float64) (float64, error) {
		pt, err := b.Rmap(x)
		if err != nil {
			return 0, err
		}
		return f(pt)
	}
}

// MapPointFunc returns f as a function from flat vectors to flat
// vectors, both laid out by the bijection's ordering
func (b *Bijection) MapPointFunc(f func(Point) (Point, error)) func(
	[]float64) ([]float64, error) {
	return func(x []float64) ([]float64, error) {
		pt, err := b.Rmap(x)
		if err != nil {
			return nil, err
		}
		out, err := f(pt)
		if err != nil {
			return nil, err
		}
		return b.Map(out)
	}
}
