package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentrysmoke/internal/testutil"
)

func runFake(t *testing.T, fake *testutil.FakeCollaborator, opts ...Option) *Result {
	t.Helper()
	h, err := New(fake, opts...)
	require.NoError(t, err)
	result, err := h.Run(context.Background())
	require.NoError(t, err)
	return result
}

func TestEvaluateAssertions_ReleasePlanPasses(t *testing.T) {
	plan, err := LoadPlan("testdata/plans/release.yaml")
	require.NoError(t, err)

	result := runFake(t, testutil.NewFakeCollaborator(), plan.Options()...)
	assert.Empty(t, EvaluateAssertions(result, plan.Assertions))
}

func TestEvaluateAssertions_StressPlanDocumentsNoShortCircuit(t *testing.T) {
	plan, err := LoadPlan("testdata/plans/stress.yaml")
	require.NoError(t, err)

	fake := testutil.NewFakeCollaborator().FailInitOn(5, errors.New("init refused"))
	result := runFake(t, fake, plan.Options()...)
	assert.Empty(t, EvaluateAssertions(result, plan.Assertions))
}

func TestAssertTraceCount_Mismatch(t *testing.T) {
	result := runFake(t, testutil.NewFakeCollaborator(), WithCycles(2))

	errs := EvaluateAssertions(result, []Assertion{{Type: AssertTraceCount, Op: OpInit, Count: 3}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: trace_count")
	assert.Contains(t, errs[0], "3 occurrences of init")
	assert.Contains(t, errs[0], "Actual: 2 occurrences")
}

func TestAssertTraceCount_SuccessOnly(t *testing.T) {
	fake := testutil.NewFakeCollaborator().FailInitOn(1, errors.New("nope"))
	result := runFake(t, fake, WithCycles(2))

	assert.Empty(t, EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Op: OpInit, Count: 2},
		{Type: AssertTraceCount, Op: OpInit, Count: 1, SuccessOnly: true},
	}))
}

func TestAssertTraceOrder(t *testing.T) {
	result := runFake(t, testutil.NewFakeCollaborator(), WithCycles(1))

	assert.Empty(t, EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceOrder, Ops: []string{OpSetEnvironment, OpInit}},
	}))

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceOrder, Ops: []string{OpShutdown, OpInit}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "should be before")
}

func TestAssertTraceOrder_MissingOp(t *testing.T) {
	fake := testutil.NewFakeCollaborator().FailInitOn(1, errors.New("nope"))
	result := runFake(t, fake, WithCycles(1))

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceOrder, Ops: []string{OpInit, OpShutdown}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "missing op: shutdown")
}

func TestAssertTraceContains_Environment(t *testing.T) {
	result := runFake(t, testutil.NewFakeCollaborator(), WithCycles(1))

	assert.Empty(t, EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Op: OpInit, Environment: "release"},
	}))

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Op: OpInit, Environment: "staging"},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `with environment "staging"`)
	assert.Contains(t, errs[0], "Full trace:")
}

func TestAssertCycles(t *testing.T) {
	result := runFake(t, testutil.NewFakeCollaborator(), WithCycles(4))

	assert.Empty(t, EvaluateAssertions(result, []Assertion{{Type: AssertCycles, Count: 4}}))
	errs := EvaluateAssertions(result, []Assertion{{Type: AssertCycles, Count: 10}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "10 cycles attempted")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult("r", "release", 1), []Assertion{{Type: "final_state"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "final_state"`)
}

// pairedTrace builds a well-formed single-cycle trace that tests then corrupt.
func pairedTrace() *Result {
	r := NewResult("r", "release", 1)
	r.CyclesAttempted = 1
	r.Trace = []TraceEvent{
		{Seq: 1, Cycle: 1, Op: OpNewOptions},
		{Seq: 2, Cycle: 1, Op: OpSetEnvironment, Environment: "release"},
		{Seq: 3, Cycle: 1, Op: OpInit, Environment: "release"},
		{Seq: 4, Cycle: 1, Op: OpShutdown},
	}
	return r
}

func TestVerifyLifecycle(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Result)
		wantErr string
	}{
		{
			name:   "paired",
			mutate: func(r *Result) {},
		},
		{
			name: "shutdown after failed init",
			mutate: func(r *Result) {
				r.Trace[2].Error = "refused"
			},
			wantErr: "init failed but the cycle continued",
		},
		{
			name: "missing shutdown",
			mutate: func(r *Result) {
				r.Trace = r.Trace[:3]
			},
			wantErr: "ended after init without shutdown",
		},
		{
			name: "shutdown without init",
			mutate: func(r *Result) {
				r.Trace = append(r.Trace[:2], r.Trace[3])
			},
			wantErr: "step 3 is shutdown, want init",
		},
		{
			name: "wrong environment",
			mutate: func(r *Result) {
				r.Trace[1].Environment = "staging"
			},
			wantErr: `environment "staging", want "release"`,
		},
		{
			name: "overlapping init",
			mutate: func(r *Result) {
				r.Trace = append(r.Trace, TraceEvent{Seq: 5, Cycle: 1, Op: OpInit})
			},
			wantErr: "unexpected extra step init",
		},
		{
			name: "missing cycle",
			mutate: func(r *Result) {
				r.CyclesAttempted = 2
			},
			wantErr: "cycle 2: no steps recorded",
		},
		{
			name: "event outside attempted cycles",
			mutate: func(r *Result) {
				r.Trace = append(r.Trace, TraceEvent{Seq: 5, Cycle: 7, Op: OpNewOptions})
			},
			wantErr: "belongs to cycle 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pairedTrace()
			tt.mutate(r)
			err := VerifyLifecycle(r)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var aerr *AssertionError
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, AssertLifecyclePaired, aerr.Type)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
