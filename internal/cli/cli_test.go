package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "checkd", cmd.Use)

	for _, name := range []string{"list", "run"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "list", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestListText(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	golden(t).Assert(t, "list_text", []byte(out))
}

func TestListJSON(t *testing.T) {
	out, err := execute(t, "list", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []EntryInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Data)

	var normal *EntryInfo
	for i := range resp.Data {
		if resp.Data[i].Name == "normal" {
			normal = &resp.Data[i]
		}
	}
	require.NotNil(t, normal)
	require.Len(t, normal.Params, 2)
	assert.Equal(t, "mu", normal.Params[0].Name)
	assert.Equal(t, "tau", normal.Params[1].Name)
	assert.Equal(t, []string{"int", "dlogp"}, normal.Checks)
}

func TestRunText(t *testing.T) {
	out, err := execute(t, "run", "bernoulli", "flat")
	require.NoError(t, err)
	golden(t).Assert(t, "run_text", []byte(out))
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, "run", "bernoulli", "--checks", "int",
		"--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Equal(t, []CheckResult{
		{Entry: "bernoulli", Check: "int", Passed: true},
	}, resp.Data.Results)
}

func TestRunFailure(t *testing.T) {
	// Too few intervals to integrate the density accurately
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
normalization:
  quadrature: {order: 1, panels: 1, max_intervals: 1}
`), 0o644))

	out, err := execute(t, "run", "densitydist", "--checks", "int",
		"--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL densitydist")
	assert.Contains(t, out, "0 passed, 1 failed")
}

func TestRunCommandErrors(t *testing.T) {
	for _, args := range [][]string{
		{"run", "zeta"},
		{"run", "normal", "--checks", "moments"},
		{"run", "normal", "--config", "missing.yaml"},
		{"run", "--unknown-flag"},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
	}
}

func TestSelectChecks(t *testing.T) {
	assert.Equal(t, []string{"int"},
		selectChecks([]string{"int", "dlogp"}, []string{"int"}))
	assert.Equal(t, []string{"int", "dlogp"},
		selectChecks([]string{"int", "dlogp"}, []string{"dlogp", "int"}))
	assert.Empty(t, selectChecks([]string{"dlogp"}, []string{"int"}))
}
