package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sentrysmoke/internal/client"
	"github.com/roach88/sentrysmoke/internal/harness"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string

	// Collaborator allows overriding the sentry-go client (for testing).
	// If nil, a client.Sentry is built from the resolved Config.
	Collaborator client.Collaborator

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to harness.UUIDv7Generator.
	RunIDs harness.RunIDGenerator
}

// NewRootCommand creates the root command for the sentry-smoke CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentry-smoke",
		Short: "Smoke-test repeated sentry client init/shutdown",
		Long: `Repeatedly initialize and shut down a sentry client.

Each cycle builds fresh client options, tags them with the environment,
initializes the client and shuts it down again. The run prints a start
banner before the first cycle and an end banner after the last.

Settings come from flags, SENTRY_SMOKE_* environment variables and an
optional --config YAML file, in that order of precedence.

Exit codes:
  0 - Run completed (failed cycles are recorded, not fatal, unless --strict)
  1 - Strict-mode cycle failure, failed plan assertions, or interrupted
  2 - Command error (bad flag, config or plan)

Examples:
  sentry-smoke
  sentry-smoke --cycles 100 --strict
  sentry-smoke --plan ./plans/release.yaml -v`,
		Args:          commandArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(opts, cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.PersistentFlags().BoolP(keyVerbose, "v", false, "verbose diagnostics on stderr")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (YAML)")
	addConfigFlags(cmd.Flags())

	cmd.AddCommand(NewValidateCommand())

	return cmd
}
