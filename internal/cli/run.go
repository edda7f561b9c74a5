package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sentrysmoke/internal/client"
	"github.com/roach88/sentrysmoke/internal/harness"
)

func runSmoke(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := LoadConfig(cmd.Flags(), opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	var plan *harness.Plan
	if cfg.Plan != "" {
		plan, err = harness.LoadPlan(cfg.Plan)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load plan", err)
		}
		logger.Debug("plan loaded", "name", plan.Name, "assertions", len(plan.Assertions))
	}

	collab := opts.Collaborator
	if collab == nil {
		collab = client.NewSentry(client.SentryConfig{
			DSN:          cfg.DSN,
			Debug:        cfg.Debug,
			FlushTimeout: cfg.FlushTimeout,
		})
	}

	hopts := []harness.Option{
		harness.WithCycles(cfg.Cycles),
		harness.WithEnvironment(cfg.Environment),
		harness.WithStrict(cfg.Strict),
		harness.WithOutput(cmd.OutOrStdout()),
		harness.WithLogger(logger),
	}
	if opts.RunIDs != nil {
		hopts = append(hopts, harness.WithRunIDGenerator(opts.RunIDs))
	}
	if plan != nil {
		// Plan settings win over flags and config.
		hopts = append(hopts, plan.Options()...)
	}

	h, err := harness.New(collab, hopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid run settings", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := h.Run(ctx)

	if cfg.Verbose {
		fmt.Fprint(cmd.ErrOrStderr(), harness.FormatTrace(result))
	}
	logger.Debug("run complete",
		"run_id", result.RunID,
		"attempted", result.CyclesAttempted,
		"failed", len(result.Errors),
		"pass", result.Pass,
	)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return WrapExitError(ExitFailure, "run interrupted", runErr)
		}
		return WrapExitError(ExitFailure, "strict run failed", runErr)
	}

	if plan != nil {
		failures := harness.EvaluateAssertions(result, plan.Assertions)
		for _, msg := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
		if len(failures) > 0 {
			return NewExitError(ExitFailure, fmt.Sprintf("plan %q: %d assertion(s) failed", plan.Name, len(failures)))
		}
	}

	return nil
}

// newLogger builds the stderr text logger. Debug level with --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
