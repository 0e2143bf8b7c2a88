package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/pmc/catalog"
	"github.com/samuelfneumann/pmc/check"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config string
	Checks []string
	All    bool
}

// CheckResult is the outcome of one check of one entry in JSON output.
type CheckResult struct {
	Entry  string `json:"entry"`
	Check  string `json:"check"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// RunSummary is the data of the run command's JSON output.
type RunSummary struct {
	Results []CheckResult `json:"results"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [entries...]",
		Short: "Run the checks of catalogue entries",
		Long: `Run the checks of the named catalogue entries, or of every entry
that is not heavy if none are named.

Example:
  checkd run normal poisson
  checkd run --checks dlogp --all
  checkd run --config checkd.yaml --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "",
		"path to a YAML configuration file")
	cmd.Flags().StringSliceVar(&opts.Checks, "checks", nil,
		"checks to run (int,dlogp), default all")
	cmd.Flags().BoolVar(&opts.All, "all", false,
		"include heavy entries when none are named")

	return cmd
}

func runChecks(opts *RunOptions, names []string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	config := check.DefaultConfig()
	if opts.Config != "" {
		var err error
		config, err = check.LoadConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	for _, name := range opts.Checks {
		if name != check.NameNormalization && name != check.NameGradient {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("unknown check %q", name))
		}
	}

	var entries []catalog.Entry
	if len(names) == 0 {
		for _, e := range catalog.All() {
			if !e.Heavy || opts.All {
				entries = append(entries, e)
			}
		}
	}
	for _, name := range names {
		e, err := catalog.Lookup(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "unknown entry", err)
		}
		entries = append(entries, e)
	}

	var summary RunSummary
	for _, e := range entries {
		if opts.Checks != nil {
			e.Checks = selectChecks(e.CheckNames(), opts.Checks)
			if len(e.Checks) == 0 {
				continue
			}
		}

		results, err := e.Run(config, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to run "+e.Name,
				err)
		}

		for _, r := range results {
			cr := CheckResult{Entry: e.Name, Check: r.Check, Passed: r.Err == nil}
			if r.Err != nil {
				cr.Error = r.Err.Error()
				summary.Failed++
			} else {
				summary.Passed++
			}
			summary.Results = append(summary.Results, cr)

			if f.Format == "text" {
				status := "PASS"
				if !cr.Passed {
					status = "FAIL"
				}
				f.Printf("%-4s %-20s %s\n", status, cr.Entry, cr.Check)
				if !cr.Passed {
					f.Printf("     %s\n", cr.Error)
				}
			}
		}
	}

	if f.Format == "json" {
		status := "ok"
		if summary.Failed > 0 {
			status = "fail"
		}
		if summary.Results == nil {
			summary.Results = []CheckResult{}
		}
		if err := f.JSON(status, summary); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output",
				err)
		}
	} else {
		f.Printf("%d passed, %d failed\n", summary.Passed, summary.Failed)
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, "checks failed")
	}
	return nil
}

// selectChecks returns the checks of have that are in want, in the
// order of have
func selectChecks(have, want []string) []string {
	out := []string{}
	for _, c := range have {
		if slices.Contains(want, c) {
			out = append(out, c)
		}
	}
	return out
}
