package harness

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentrysmoke/internal/testutil"
)

// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func runGolden(t *testing.T, collab *testutil.FakeCollaborator, opts ...Option) (*Result, []byte) {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]Option{
		WithOutput(out),
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator("test-run-golden")),
	}, opts...)
	h, err := New(collab, opts...)
	require.NoError(t, err)

	result, err := h.Run(context.Background())
	require.NoError(t, err)
	return result, out.Bytes()
}

func TestGolden_Stdout(t *testing.T) {
	_, stdout := runGolden(t, testutil.NewFakeCollaborator())
	newGoldie(t).Assert(t, "stdout", stdout)
}

func TestGolden_TwoCycleTrace(t *testing.T) {
	result, _ := runGolden(t, testutil.NewFakeCollaborator(), WithCycles(2))
	newGoldie(t).Assert(t, "two_cycles", []byte(FormatTrace(result)))
}

func TestGolden_InitFailsOnCycleFive(t *testing.T) {
	fake := testutil.NewFakeCollaborator().FailInitOn(5, errors.New("init refused"))
	result, stdout := runGolden(t, fake)

	g := newGoldie(t)
	g.Assert(t, "stdout", stdout)
	g.Assert(t, "init_fails_cycle_5", []byte(FormatTrace(result)))
}
