package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sentrysmoke/internal/harness"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.yaml>...",
		Short: "Check run plans without running them",
		Long: `Parse and validate one or more run plan files.

Unknown fields, missing names or descriptions, and malformed assertions
are reported. No client cycles are performed.

Example:
  sentry-smoke validate ./plans/release.yaml ./plans/stress.yaml`,
		Args:          commandArgs(cobra.MinimumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validatePlans(cmd, args)
		},
	}
}

func validatePlans(cmd *cobra.Command, paths []string) error {
	failed := 0
	for _, path := range paths {
		plan, err := harness.LoadPlan(path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: plan %q (%d assertions)\n", path, plan.Name, len(plan.Assertions))
	}

	if failed > 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%d of %d plan(s) invalid", failed, len(paths)))
	}
	return nil
}
