// Command checkd checks probability distributions for self-consistency.
package main

import (
	"fmt"
	"os"

	"github.com/samuelfneumann/pmc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
