// Package domain describes finite representative samples of a
// variable's support together with the support's boundary. Domains are
// used both to enumerate test points and to bound integration.
package domain

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"
)

// Kind is the numeric kind of the elements of a Domain
type Kind int

const (
	Continuous Kind = iota
	Discrete
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Form is the closed set of sample shapes a Domain can have
type Form int

const (
	Scalar Form = iota
	Vector2
	Vector3
	Matrix
	OtherForm
)

func (f Form) String() string {
	switch f {
	case Scalar:
		return "scalar"
	case Vector2:
		return "vector2"
	case Vector3:
		return "vector3"
	case Matrix:
		return "matrix"
	}
	return "other"
}

// FormOf returns the Form of a sample shape
func FormOf(shape tensor.Shape) Form {
	switch {
	case len(shape) == 0 || (len(shape) == 1 && shape[0] == 1):
		return Scalar
	case len(shape) == 1 && shape[0] == 2:
		return Vector2
	case len(shape) == 1 && shape[0] == 3:
		return Vector3
	case len(shape) == 2:
		return Matrix
	}
	return OtherForm
}

// Value is a single sample of a Domain, stored flat in row-major order
type Value []float64

// Neg returns the element-wise negation of v
func (v Value) Neg() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	for i := range v {
		out[i] = -v[i]
	}
	return out
}

// Clone returns a copy of v
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	return append(Value(nil), v...)
}

// Domain is an immutable, ordered sample of interior values of a
// variable's support plus the support's lower and upper boundary.
type Domain struct {
	vals  []Value
	lower Value
	upper Value
	kind  Kind
	shape tensor.Shape
}

// Number is the set of element types a scalar Domain can be built from
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Scalars returns a scalar Domain. The first and last values are taken
// as the boundary and the rest, in order, as the interior. The element
// kind is Discrete for integer types and Continuous for floating point
// types unless overridden with WithKind.
func Scalars[T Number](vals []T, opts ...Option) (*Domain, error) {
	kind := Continuous
	switch any(*new(T)).(type) {
	case float32, float64:
	default:
		kind = Discrete
	}

	samples := make([]Value, len(vals))
	for i, v := range vals {
		samples[i] = Value{float64(v)}
	}

	opts = append([]Option{WithKind(kind)}, opts...)
	return New(samples, tensor.ScalarShape(), opts...)
}

// Vectors returns a continuous vector Domain with explicit boundary.
// All values are interior.
func Vectors(vals [][]float64, lower, upper []float64,
	opts ...Option) (*Domain, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("vectors: %w: no values", ErrInvalid)
	}

	samples := make([]Value, len(vals))
	for i, v := range vals {
		samples[i] = Value(v).Clone()
	}

	opts = append([]Option{WithBounds(lower, upper)}, opts...)
	return New(samples, tensor.Shape{len(vals[0])}, opts...)
}

// Matrices returns a continuous matrix Domain with no representable
// boundary. All values are interior.
func Matrices(vals [][][]float64, opts ...Option) (*Domain, error) {
	if len(vals) == 0 || len(vals[0]) == 0 {
		return nil, fmt.Errorf("matrices: %w: no values", ErrInvalid)
	}

	rows, cols := len(vals[0]), len(vals[0][0])
	samples := make([]Value, len(vals))
	for i, m := range vals {
		if len(m) != rows {
			return nil, fmt.Errorf("matrices: %w: value %d has %d rows, "+
				"expected %d", ErrInvalid, i, len(m), rows)
		}
		sample := make(Value, 0, rows*cols)
		for _, row := range m {
			if len(row) != cols {
				return nil, fmt.Errorf("matrices: %w: value %d has a row "+
					"of length %d, expected %d", ErrInvalid, i, len(row), cols)
			}
			sample = append(sample, row...)
		}
		samples[i] = sample
	}

	opts = append([]Option{Unbounded()}, opts...)
	return New(samples, tensor.Shape{rows, cols}, opts...)
}

// New returns a Domain over samples of the given shape. Without
// WithBounds or Unbounded the first and last samples are taken as the
// boundary and the remaining samples as the interior.
func New(vals []Value, shape tensor.Shape, opts ...Option) (*Domain, error) {
	o := options{kind: Continuous}
	for _, opt := range opts {
		opt(&o)
	}

	size := Size(shape)
	for i, v := range vals {
		if len(v) != size {
			return nil, fmt.Errorf("new: %w: value %d has %d elements, "+
				"expected %d for shape %v", ErrInvalid, i, len(v), size, shape)
		}
	}

	d := &Domain{
		kind:  o.kind,
		shape: shape.Clone(),
	}

	switch {
	case o.unbounded:
		d.vals = cloneValues(vals)

	case o.bounded:
		if len(o.lower) != size || len(o.upper) != size {
			return nil, fmt.Errorf("new: %w: bounds have %d and %d "+
				"elements, expected %d", ErrInvalid, len(o.lower),
				len(o.upper), size)
		}
		d.vals = cloneValues(vals)
		d.lower = o.lower.Clone()
		d.upper = o.upper.Clone()

	default:
		if len(vals) < 2 {
			return nil, fmt.Errorf("new: %w: need at least 2 values to "+
				"infer a boundary, got %d", ErrInvalid, len(vals))
		}
		d.lower = vals[0].Clone()
		d.upper = vals[len(vals)-1].Clone()
		d.vals = cloneValues(vals[1 : len(vals)-1])
	}

	if len(d.vals) == 0 {
		return nil, fmt.Errorf("new: %w: domain has no interior values",
			ErrInvalid)
	}

	return d, nil
}

// MustScalars is like Scalars but panics on error
func MustScalars[T Number](vals []T, opts ...Option) *Domain {
	d, err := Scalars(vals, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// MustVectors is like Vectors but panics on error
func MustVectors(vals [][]float64, lower, upper []float64,
	opts ...Option) *Domain {
	d, err := Vectors(vals, lower, upper, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// MustMatrices is like Matrices but panics on error
func MustMatrices(vals [][][]float64, opts ...Option) *Domain {
	d, err := Matrices(vals, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Values returns the interior values of the Domain
func (d *Domain) Values() []Value { return cloneValues(d.vals) }

// Len returns the number of interior values
func (d *Domain) Len() int { return len(d.vals) }

// At returns the i-th interior value
func (d *Domain) At(i int) Value { return d.vals[i].Clone() }

// Lower returns the lower boundary, or nil if the Domain is unbounded
func (d *Domain) Lower() Value { return d.lower.Clone() }

// Upper returns the upper boundary, or nil if the Domain is unbounded
func (d *Domain) Upper() Value { return d.upper.Clone() }

// Bounded returns whether the Domain has a representable boundary
func (d *Domain) Bounded() bool { return d.lower != nil }

// Kind returns the element kind of the Domain
func (d *Domain) Kind() Kind { return d.kind }

// Shape returns the shape of each sample
func (d *Domain) Shape() tensor.Shape { return d.shape.Clone() }

// Form returns the shape tag of each sample
func (d *Domain) Form() Form { return FormOf(d.shape) }

// Neg returns a new Domain over the negated interior values. Negation
// reverses order, so the boundary becomes (-upper, -lower). The swap is
// element-wise, so every axis of a vector Domain stays ordered.
func (d *Domain) Neg() *Domain {
	vals := make([]Value, len(d.vals))
	for i, v := range d.vals {
		vals[i] = v.Neg()
	}

	return &Domain{
		vals:  vals,
		lower: d.upper.Neg(),
		upper: d.lower.Neg(),
		kind:  d.kind,
		shape: d.shape.Clone(),
	}
}

// LowerAt returns the lower boundary of the i-th element of a sample,
// or -Inf if the Domain is unbounded
func (d *Domain) LowerAt(i int) float64 {
	if d.lower == nil {
		return math.Inf(-1)
	}
	return d.lower[i]
}

// UpperAt returns the upper boundary of the i-th element of a sample,
// or +Inf if the Domain is unbounded
func (d *Domain) UpperAt(i int) float64 {
	if d.upper == nil {
		return math.Inf(1)
	}
	return d.upper[i]
}

func (d *Domain) String() string {
	return fmt.Sprintf("Domain{%v %v, [%v, %v], %v}", d.kind, d.Form(),
		d.lower, d.upper, d.vals)
}

// Named associates a Domain with the name of the variable it describes
type Named struct {
	Name   string
	Domain *Domain
}

// Size returns the number of elements in a sample of the given shape.
// A scalar shape holds one element.
func Size(shape tensor.Shape) int {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return size
}

func cloneValues(vals []Value) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = v.Clone()
	}
	return out
}
