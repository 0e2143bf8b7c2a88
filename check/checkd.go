// Package check verifies the self-consistency of probability
// distributions. A distribution is placed in a model with one variable
// per parameter, and its density is checked over grids of parameter and
// value Domains: the density must integrate to one, and its symbolic
// gradient must agree with a numerical estimate.
package check

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samuelfneumann/pmc/distribution"
	"github.com/samuelfneumann/pmc/domain"
	"github.com/samuelfneumann/pmc/model"
)

// Checker checks one property of the distribution of value in m. Params
// holds the Domain of every other variable of m, in declaration order.
type Checker interface {
	Name() string
	Check(m *model.Model, value *model.Var, valueDomain *domain.Domain,
		params []domain.Named) error
}

type options struct {
	checks    []Checker
	checksSet bool
	extras distribution.Extras
	config Config
	logger *slog.Logger
}

// Option configures Checkd
type Option func(*options)

// WithChecks sets the checks to run. The default is every check of the
// configuration. WithChecks with no checks runs none.
func WithChecks(checks ...Checker) Option {
	return func(o *options) {
		o.checks = checks
		o.checksSet = true
	}
}

// WithExtras sets the non-variable arguments of the distribution
func WithExtras(extras distribution.Extras) Option {
	return func(o *options) {
		o.extras = extras
	}
}

// WithConfig sets the configuration of the default checks
func WithConfig(c Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// WithLogger sets the logger of the default checks
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Checkd builds a model for the distribution family fam with parameters
// ranging over params and its value ranging over valueDomain, then runs
// every check on it. All check failures are returned, joined.
func Checkd(fam distribution.Family, valueDomain *domain.Domain,
	params []domain.Named, opts ...Option) error {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := loggerOr(o.logger)

	checks := o.checks
	if !o.checksSet {
		var err error
		checks, err = o.config.Checks(logger)
		if err != nil {
			return fmt.Errorf("checkd: %v", err)
		}
	}

	m, err := BuildModel(fam, valueDomain, params, o.extras)
	if err != nil {
		return fmt.Errorf("checkd: %w", err)
	}
	defer m.Close()

	value, err := m.Var(ValueName)
	if err != nil {
		return fmt.Errorf("checkd: %w", err)
	}

	results, err := Run(m, value, valueDomain, params, checks, logger)
	if err != nil {
		return fmt.Errorf("checkd: %w", err)
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", r.Check, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Result is the outcome of running one check
type Result struct {
	Check string

	// Err is nil if the check passed or was skipped
	Err error
}

// Run runs each check on the distribution of value in m. Params must
// hold the Domain of every other variable of m.
func Run(m *model.Model, value *model.Var, valueDomain *domain.Domain,
	params []domain.Named, checks []Checker, logger *slog.Logger) ([]Result,
	error) {
	logger = loggerOr(logger)

	// Parameter domains in the model's declaration order
	vars := m.Vars()
	ordered := make([]domain.Named, 0, len(vars))
	for _, v := range vars {
		if v == value {
			continue
		}
		d, ok := lookup(params, v.Name)
		if !ok {
			return nil, fmt.Errorf("run: %w: no domain for %q",
				model.ErrUnknownVar, v.Name)
		}
		ordered = append(ordered, domain.Named{Name: v.Name, Domain: d})
	}

	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		logger.Debug("running check", "check", c.Name(), "var", value.Name,
			"points", domain.Count(append(domains(ordered), valueDomain)...))
		results = append(results, Result{
			Check: c.Name(),
			Err:   c.Check(m, value, valueDomain, ordered),
		})
	}
	return results, nil
}

func lookup(params []domain.Named, name string) (*domain.Domain, bool) {
	for _, p := range params {
		if p.Name == name {
			return p.Domain, true
		}
	}
	return nil, false
}
