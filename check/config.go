package check

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/samuelfneumann/pmc/numdiff"
	"github.com/samuelfneumann/pmc/quadrature"
	"gopkg.in/yaml.v3"
)

// Config configures the checks run by Checkd
type Config struct {
	Normalization NormalizationConfig `yaml:"normalization"`
	Gradient      GradientConfig      `yaml:"gradient"`
}

// NormalizationConfig configures the Normalization check
type NormalizationConfig struct {
	Tolerance  float64             `yaml:"tolerance"`
	Quadrature quadrature.Settings `yaml:"quadrature"`
}

// GradientConfig configures the Gradient check
type GradientConfig struct {
	Tolerance float64 `yaml:"tolerance"`

	// NumericalDifferentiation enables the check. Without it there is
	// nothing to compare symbolic gradients against.
	NumericalDifferentiation bool `yaml:"numerical_differentiation"`

	Method numdiff.Method `yaml:"method"`

	// Step is passed to numdiff.New
	Step float64 `yaml:"step"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Normalization: NormalizationConfig{
			Tolerance:  1.5e-7,
			Quadrature: quadrature.DefaultSettings(),
		},
		Gradient: GradientConfig{
			Tolerance:                1.5e-6,
			NumericalDifferentiation: true,
			Method:                   numdiff.MethodRidders,
		},
	}
}

// Validate returns an error if the configuration cannot be used
func (c Config) Validate() error {
	if !(c.Normalization.Tolerance > 0) {
		return fmt.Errorf("validate: normalization tolerance must be "+
			"positive, got %v", c.Normalization.Tolerance)
	}
	if err := c.Normalization.Quadrature.Validate(); err != nil {
		return fmt.Errorf("validate: quadrature: %v", err)
	}

	if !(c.Gradient.Tolerance > 0) {
		return fmt.Errorf("validate: gradient tolerance must be positive, "+
			"got %v", c.Gradient.Tolerance)
	}
	if _, err := numdiff.New(c.Gradient.Method, c.Gradient.Step); err != nil {
		return fmt.Errorf("validate: gradient: %v", err)
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v: %w", path, err)
	}
	return c, nil
}

// ParseConfig parses a YAML configuration. Unknown fields are rejected
// and missing fields keep their default values.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}
	return c, nil
}

// Checks returns the checks described by the configuration, in the
// order named. Nil names means every check.
func (c Config) Checks(logger *slog.Logger, names ...string) ([]Checker,
	error) {
	if names == nil {
		names = []string{NameNormalization, NameGradient}
	}

	checks := make([]Checker, 0, len(names))
	for _, name := range names {
		switch name {
		case NameNormalization:
			checks = append(checks, &Normalization{
				Tolerance:  c.Normalization.Tolerance,
				Quadrature: c.Normalization.Quadrature,
				Logger:     logger,
			})

		case NameGradient:
			gr := &Gradient{Tolerance: c.Gradient.Tolerance, Logger: logger}
			if c.Gradient.NumericalDifferentiation {
				d, err := numdiff.New(c.Gradient.Method, c.Gradient.Step)
				if err != nil {
					return nil, fmt.Errorf("checks: %v", err)
				}
				gr.Differentiator = d
			}
			checks = append(checks, gr)

		default:
			return nil, fmt.Errorf("checks: unknown check %q", name)
		}
	}
	return checks, nil
}
