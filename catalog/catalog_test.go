package catalog_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/samuelfneumann/pmc/catalog"
	"github.com/samuelfneumann/pmc/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAll(t *testing.T) {
	entries := catalog.All()
	require.NotEmpty(t, entries)

	seen := make(map[string]bool)
	for i, e := range entries {
		assert.False(t, seen[e.Name], "duplicate entry %v", e.Name)
		seen[e.Name] = true

		if i > 0 {
			assert.Less(t, entries[i-1].Name, e.Name)
		}

		assert.NotNil(t, e.Value, e.Name)
		assert.True(t, (e.Family == nil) != (e.Model == nil),
			"%v: expected exactly one of Family and Model", e.Name)
		for _, name := range e.CheckNames() {
			assert.Contains(t, []string{check.NameNormalization,
				check.NameGradient}, name)
		}
	}

	for _, name := range []string{"normal", "addpotential", "bound",
		"mvnormal2", "wishart"} {
		assert.True(t, seen[name], "missing entry %v", name)
	}
}

func TestLookup(t *testing.T) {
	e, err := catalog.Lookup("poisson")
	require.NoError(t, err)
	assert.Equal(t, "poisson", e.Name)
	assert.Equal(t, []string{check.NameNormalization, check.NameGradient},
		e.CheckNames())

	_, err = catalog.Lookup("zeta")
	assert.Error(t, err)
}

func TestEntriesBuild(t *testing.T) {
	c := check.DefaultConfig()
	for _, e := range catalog.All() {
		// Only the construction of each model, no checks
		e.Checks = []string{}
		results, err := e.Run(c, discard)
		require.NoError(t, err, e.Name)
		assert.Empty(t, results, e.Name)
	}
}

func TestRunEntry(t *testing.T) {
	e, err := catalog.Lookup("unif")
	require.NoError(t, err)

	results, err := e.Run(check.DefaultConfig(), discard)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Check)
	}
}

func TestCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping catalogue sweep in short mode")
	}

	c := check.DefaultConfig()
	for _, e := range catalog.All() {
		t.Run(e.Name, func(t *testing.T) {
			results, err := e.Run(c, discard)
			require.NoError(t, err)
			for _, r := range results {
				assert.NoError(t, r.Err, r.Check)
			}
		})
	}
}
