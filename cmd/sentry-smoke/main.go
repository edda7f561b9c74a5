// Command sentry-smoke repeatedly initializes and shuts down a sentry client
// and reports liveness on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sentrysmoke/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
