package harness

import "fmt"

// Trace operations, in the order they occur within a cycle.
const (
	OpNewOptions     = "new_options"
	OpSetEnvironment = "set_environment"
	OpInit           = "init"
	OpShutdown       = "shutdown"
)

// TraceEvent is a single lifecycle step observed by the harness.
type TraceEvent struct {
	Seq         int64  `json:"seq"`
	Cycle       int    `json:"cycle"`
	Op          string `json:"op"`
	Environment string `json:"environment,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the step succeeded.
func (e TraceEvent) OK() bool {
	return e.Error == ""
}

// Result is the outcome of a harness run.
type Result struct {
	RunID string `json:"run_id"`

	// Environment is the tag every cycle was configured with.
	Environment string `json:"environment"`

	CyclesPlanned   int `json:"cycles_planned"`
	CyclesAttempted int `json:"cycles_attempted"`

	// Pass is true when every attempted cycle completed without error.
	Pass bool `json:"pass"`

	// Trace contains every step of every attempted cycle in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains one message per failed cycle or failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult(runID, environment string, planned int) *Result {
	return &Result{
		RunID:         runID,
		Environment:   environment,
		CyclesPlanned: planned,
		Pass:          true,
		Trace:         []TraceEvent{},
		Errors:        []string{},
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// CycleEvents returns the trace events belonging to cycle.
func (r *Result) CycleEvents(cycle int) []TraceEvent {
	var events []TraceEvent
	for _, e := range r.Trace {
		if e.Cycle == cycle {
			events = append(events, e)
		}
	}
	return events
}

// CycleError reports the step at which a lifecycle cycle failed.
type CycleError struct {
	Cycle int
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle %d: %s: %v", e.Cycle, e.Op, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}
