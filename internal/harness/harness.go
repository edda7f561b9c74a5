package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sentrysmoke/internal/client"
)

// Run defaults and console markers.
const (
	DefaultCycles      = 10
	DefaultEnvironment = "release"

	StartBanner = "run sentry-native tests"
	EndBanner   = "reach end :-D"
)

// Harness runs lifecycle cycles against a client.Collaborator.
//
// A Harness is not safe for concurrent use: the collaborator models a
// process-wide singleton and cycles must never overlap.
type Harness struct {
	collab      client.Collaborator
	cycles      int
	environment string
	strict      bool
	out         io.Writer
	logger      *slog.Logger
	runIDs      RunIDGenerator

	seq int64
}

// Option configures a Harness.
type Option func(*Harness)

// WithCycles sets the number of lifecycle cycles per run.
func WithCycles(n int) Option {
	return func(h *Harness) { h.cycles = n }
}

// WithEnvironment sets the environment tag applied to every cycle's options.
func WithEnvironment(tag string) Option {
	return func(h *Harness) { h.environment = tag }
}

// WithStrict stops the run at the first failed cycle.
func WithStrict(strict bool) Option {
	return func(h *Harness) { h.strict = strict }
}

// WithOutput sets where the banners are written.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) { h.out = w }
}

// WithLogger sets the diagnostic logger. Logs never go to the banner output
// unless the caller points both at the same writer.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// WithRunIDGenerator overrides the UUIDv7 run ID generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(h *Harness) { h.runIDs = g }
}

// New creates a harness for collab.
//
// Defaults: DefaultCycles cycles, DefaultEnvironment, lenient, banners to
// io.Discard, logs discarded.
func New(collab client.Collaborator, opts ...Option) (*Harness, error) {
	if collab == nil {
		return nil, errors.New("harness: collaborator is required")
	}
	h := &Harness{
		collab:      collab,
		cycles:      DefaultCycles,
		environment: DefaultEnvironment,
		out:         io.Discard,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs:      UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.cycles < 1 {
		return nil, fmt.Errorf("harness: cycles must be >= 1, got %d", h.cycles)
	}
	if h.environment == "" {
		return nil, errors.New("harness: environment tag must not be empty")
	}
	if h.out == nil {
		h.out = io.Discard
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.runIDs == nil {
		h.runIDs = UUIDv7Generator{}
	}
	return h, nil
}

// Cycles returns the configured cycle count.
func (h *Harness) Cycles() int {
	return h.cycles
}

// Run performs one full run and returns its Result.
//
// In lenient mode the returned error is nil unless ctx is cancelled; failed
// cycles only show up in the Result. In strict mode the first failed cycle is
// returned as a *CycleError. The Result is always non-nil.
//
// ctx is checked between cycles only; a cycle in progress is never abandoned,
// so the collaborator is always left without an active session.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	h.seq = 0
	result := NewResult(h.runIDs.Generate(), h.environment, h.cycles)
	logger := h.logger.With("run_id", result.RunID)

	logger.Debug("run starting", "cycles", h.cycles, "environment", h.environment, "strict", h.strict)
	fmt.Fprintln(h.out, StartBanner)

	for cycle := 1; cycle <= h.cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			logger.Info("run interrupted", "before_cycle", cycle, "error", err)
			return result, fmt.Errorf("run interrupted before cycle %d: %w", cycle, err)
		}

		result.CyclesAttempted++
		if err := h.runCycle(cycle, result); err != nil {
			result.AddError(err.Error())
			if h.strict {
				logger.Error("cycle failed, stopping", "cycle", cycle, "error", err)
				return result, err
			}
			logger.Debug("cycle failed", "cycle", cycle, "error", err)
			continue
		}
		logger.Debug("cycle complete", "cycle", cycle)
	}

	fmt.Fprintln(h.out, EndBanner)
	logger.Debug("run finished", "attempted", result.CyclesAttempted, "pass", result.Pass)
	return result, nil
}

// runCycle performs one lifecycle cycle. Shutdown is only attempted after a
// successful Init so that every session is paired.
func (h *Harness) runCycle(cycle int, result *Result) error {
	opts := client.NewOptions()
	h.record(result, cycle, OpNewOptions, "", nil)

	if err := opts.SetEnvironment(h.environment); err != nil {
		h.record(result, cycle, OpSetEnvironment, h.environment, err)
		return &CycleError{Cycle: cycle, Op: OpSetEnvironment, Err: err}
	}
	environment := opts.Environment()
	h.record(result, cycle, OpSetEnvironment, environment, nil)

	// opts belongs to the collaborator from here on.
	if err := h.collab.Init(opts); err != nil {
		h.record(result, cycle, OpInit, environment, err)
		return &CycleError{Cycle: cycle, Op: OpInit, Err: err}
	}
	h.record(result, cycle, OpInit, environment, nil)

	if err := h.collab.Shutdown(); err != nil {
		h.record(result, cycle, OpShutdown, "", err)
		return &CycleError{Cycle: cycle, Op: OpShutdown, Err: err}
	}
	h.record(result, cycle, OpShutdown, "", nil)
	return nil
}

func (h *Harness) record(result *Result, cycle int, op, environment string, err error) {
	h.seq++
	event := TraceEvent{
		Seq:         h.seq,
		Cycle:       cycle,
		Op:          op,
		Environment: environment,
	}
	if err != nil {
		event.Error = err.Error()
	}
	result.Trace = append(result.Trace, event)
}
