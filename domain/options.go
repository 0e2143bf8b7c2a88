package domain

type options struct {
	kind      Kind
	lower     Value
	upper     Value
	bounded   bool
	unbounded bool
}

// Option configures the construction of a Domain
type Option func(*options)

// WithKind sets the element kind of a Domain
func WithKind(k Kind) Option {
	return func(o *options) {
		o.kind = k
	}
}

// WithBounds sets an explicit boundary. No values are stripped from the
// interior.
func WithBounds(lower, upper []float64) Option {
	return func(o *options) {
		o.lower = Value(lower).Clone()
		o.upper = Value(upper).Clone()
		o.bounded = true
		o.unbounded = false
	}
}

// Unbounded marks a Domain as having no representable boundary. No
// values are stripped from the interior.
func Unbounded() Option {
	return func(o *options) {
		o.lower, o.upper = nil, nil
		o.bounded = false
		o.unbounded = true
	}
}
