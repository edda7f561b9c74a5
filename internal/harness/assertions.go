package harness

import (
	"fmt"
	"strings"
)

// Assertion type constants.
const (
	AssertTraceContains   = "trace_contains"
	AssertTraceOrder      = "trace_order"
	AssertTraceCount      = "trace_count"
	AssertLifecyclePaired = "lifecycle_paired"
	AssertCycles          = "cycles"
)

// Assertion validates the recorded trace of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Op appears in the trace (with Environment, if set)
	// - "trace_order": first occurrences of Ops appear in order
	// - "trace_count": Op appears exactly Count times
	// - "lifecycle_paired": every cycle satisfies the pairing rules
	// - "cycles": exactly Count cycles were attempted
	Type string `yaml:"type"`

	// Op is the trace operation (used by trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected operation order (used by trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number (used by trace_count, cycles).
	Count int `yaml:"count"`

	// Environment narrows trace_contains to events carrying this tag.
	Environment string `yaml:"environment,omitempty"`

	// SuccessOnly makes trace_contains and trace_count ignore failed steps.
	SuccessOnly bool `yaml:"success_only,omitempty"`
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			status := "ok"
			if !event.OK() {
				status = event.Error
			}
			fmt.Fprintf(&buf, "  [%d] cycle %d %s: %s\n", event.Seq, event.Cycle, event.Op, status)
		}
	}

	return buf.String()
}

func matchEvent(event TraceEvent, assertion Assertion) bool {
	if event.Op != assertion.Op {
		return false
	}
	if assertion.SuccessOnly && !event.OK() {
		return false
	}
	return assertion.Environment == "" || event.Environment == assertion.Environment
}

// assertTraceContains checks that at least one event matches the assertion.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matchEvent(event, assertion) {
			return nil
		}
	}

	expected := fmt.Sprintf("op %s", assertion.Op)
	if assertion.Environment != "" {
		expected += fmt.Sprintf(" with environment %q", assertion.Environment)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrence of each op appears in the
// given order. Intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Op]; !seen {
			positions[event.Op] = i + 1 // 1-indexed for readability
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev := assertion.Ops[i-1]
		curr := assertion.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the op appears exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == assertion.Op && (!assertion.SuccessOnly || event.OK()) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertCycles(result *Result, assertion Assertion) error {
	if result.CyclesAttempted != assertion.Count {
		return &AssertionError{
			Type:     AssertCycles,
			Expected: fmt.Sprintf("%d cycles attempted", assertion.Count),
			Actual:   fmt.Sprintf("%d cycles attempted", result.CyclesAttempted),
		}
	}
	return nil
}

// VerifyLifecycle checks the per-cycle rules of a run:
//
//   - cycles are numbered 1..CyclesAttempted with no gaps
//   - each cycle starts new_options, set_environment, init
//   - the environment is set to Result.Environment before init
//   - shutdown follows init only when init succeeded, and is the last step
//   - a failed init is never followed by shutdown in the same cycle
func VerifyLifecycle(result *Result) error {
	for cycle := 1; cycle <= result.CyclesAttempted; cycle++ {
		if err := verifyCycle(result, cycle); err != nil {
			return err
		}
	}
	for _, event := range result.Trace {
		if event.Cycle < 1 || event.Cycle > result.CyclesAttempted {
			return lifecycleError(result, fmt.Sprintf("event %d belongs to cycle %d outside 1..%d",
				event.Seq, event.Cycle, result.CyclesAttempted))
		}
	}
	return nil
}

func verifyCycle(result *Result, cycle int) error {
	events := result.CycleEvents(cycle)
	fail := func(format string, args ...any) error {
		return lifecycleError(result, fmt.Sprintf("cycle %d: ", cycle)+fmt.Sprintf(format, args...))
	}

	want := []string{OpNewOptions, OpSetEnvironment, OpInit, OpShutdown}
	for i, event := range events {
		if i >= len(want) {
			return fail("unexpected extra step %s", event.Op)
		}
		if event.Op != want[i] {
			return fail("step %d is %s, want %s", i+1, event.Op, want[i])
		}
		if !event.OK() && i != len(events)-1 {
			return fail("%s failed but the cycle continued", event.Op)
		}
		if event.Op == OpSetEnvironment && event.Environment != result.Environment {
			return fail("environment %q, want %q", event.Environment, result.Environment)
		}
	}

	if len(events) == 0 {
		return fail("no steps recorded")
	}
	last := events[len(events)-1]
	if last.OK() && last.Op != OpShutdown {
		return fail("ended after %s without shutdown", last.Op)
	}
	return nil
}

func lifecycleError(result *Result, actual string) *AssertionError {
	return &AssertionError{
		Type:     AssertLifecyclePaired,
		Expected: "every shutdown directly preceded by a successful init in the same cycle",
		Actual:   actual,
		Trace:    result.Trace,
	}
}

// EvaluateAssertions runs all assertions against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertLifecyclePaired:
			err = VerifyLifecycle(result)
		case AssertCycles:
			err = assertCycles(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
