package main

import (
	"fmt"
	"os"

	"github.com/roach88/fixturekit/internal/cli"
	"github.com/roach88/fixturekit/internal/examples"
	"github.com/roach88/fixturekit/internal/harness"
)

var version = "dev"

func main() {
	suites := examples.Suites()

	// Re-executed by --isolate to run a single case.
	if harness.ChildCase() != "" {
		os.Exit(harness.RunChild(suites, os.Stdout))
	}

	rootCmd := cli.NewRootCommand(suites)
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		code := cli.GetExitCode(err)
		// Test failures are already reported on stdout.
		if code != cli.ExitFailure {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	}
}
