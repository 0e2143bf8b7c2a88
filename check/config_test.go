package check_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/pmc/check"
	"github.com/samuelfneumann/pmc/numdiff"
	"github.com/samuelfneumann/pmc/quadrature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := check.DefaultConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, 1.5e-7, c.Normalization.Tolerance)
	assert.Equal(t, quadrature.DefaultSettings(), c.Normalization.Quadrature)
	assert.Equal(t, 1.5e-6, c.Gradient.Tolerance)
	assert.True(t, c.Gradient.NumericalDifferentiation)
	assert.Equal(t, numdiff.MethodRidders, c.Gradient.Method)
}

func TestParseConfig(t *testing.T) {
	c, err := check.ParseConfig([]byte(`
normalization:
  quadrature:
    max_intervals: 100
gradient:
  method: central
  step: 1e-5
`))
	require.NoError(t, err)

	want := check.DefaultConfig()
	want.Normalization.Quadrature.MaxIntervals = 100
	want.Gradient.Method = numdiff.MethodCentral
	want.Gradient.Step = 1e-5
	assert.Equal(t, want, c)

	c, err = check.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, check.DefaultConfig(), c)
}

func TestParseConfigErrors(t *testing.T) {
	for _, data := range []string{
		"normalization:\n  tolerence: 1e-7\n",
		"gradient:\n  method: secant\n",
		"gradient:\n  tolerance: 0\n",
		"normalization:\n  tolerance: -1\n",
		"normalization:\n  quadrature:\n    order: 0\n",
		"gradient: [",
	} {
		_, err := check.ParseConfig([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"gradient:\n  numerical_differentiation: false\n"), 0o644))

	c, err := check.LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, c.Gradient.NumericalDifferentiation)

	_, err = check.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigChecks(t *testing.T) {
	c := check.DefaultConfig()

	checks, err := c.Checks(discard)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, check.NameNormalization, checks[0].Name())
	assert.Equal(t, check.NameGradient, checks[1].Name())
	assert.IsType(t, &numdiff.Ridders{},
		checks[1].(*check.Gradient).Differentiator)

	checks, err = c.Checks(discard, check.NameGradient)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, check.NameGradient, checks[0].Name())

	c.Gradient.NumericalDifferentiation = false
	checks, err = c.Checks(discard, check.NameGradient)
	require.NoError(t, err)
	assert.Nil(t, checks[0].(*check.Gradient).Differentiator)

	_, err = c.Checks(discard, "moments")
	assert.Error(t, err)
}
