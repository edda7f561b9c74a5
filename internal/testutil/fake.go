package testutil

import (
	"sync"

	"github.com/roach88/sentrysmoke/internal/client"
)

// Call operations recorded by FakeCollaborator.
const (
	OpInit     = "init"
	OpShutdown = "shutdown"
)

// Call is one observed lifecycle call.
type Call struct {
	Seq         int
	Op          string
	Environment string // init only
	Err         error
}

// FakeCollaborator is an in-memory client.Collaborator.
//
// It follows the same session rules as client.Sentry: overlapping Init fails
// with client.ErrSessionActive, unpaired Shutdown with client.ErrNoSession.
// Both attempt counters are 1-based.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeCollaborator struct {
	mu           sync.Mutex
	calls        []Call
	active       bool
	inits        int
	shutdowns    int
	failInit     map[int]error
	failShutdown map[int]error
}

// NewFakeCollaborator returns a collaborator that succeeds on every call.
func NewFakeCollaborator() *FakeCollaborator {
	return &FakeCollaborator{
		failInit:     make(map[int]error),
		failShutdown: make(map[int]error),
	}
}

// FailInitOn makes the given init attempt return err without opening a session.
func (f *FakeCollaborator) FailInitOn(attempt int, err error) *FakeCollaborator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failInit[attempt] = err
	return f
}

// FailShutdownOn makes the given shutdown attempt return err. The session is
// still closed, matching a flush timeout in the real client.
func (f *FakeCollaborator) FailShutdownOn(attempt int, err error) *FakeCollaborator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failShutdown[attempt] = err
	return f
}

// Init implements client.Collaborator.
func (f *FakeCollaborator) Init(opts *client.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inits++
	call := Call{Seq: len(f.calls) + 1, Op: OpInit}

	err := f.init(opts, &call)
	call.Err = err
	f.calls = append(f.calls, call)
	return err
}

func (f *FakeCollaborator) init(opts *client.Options, call *Call) error {
	if f.active {
		return client.ErrSessionActive
	}
	snap, err := opts.Consume()
	if err != nil {
		return err
	}
	call.Environment = snap.Environment
	if err := f.failInit[f.inits]; err != nil {
		return err
	}
	f.active = true
	return nil
}

// Shutdown implements client.Collaborator.
func (f *FakeCollaborator) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.shutdowns++
	call := Call{Seq: len(f.calls) + 1, Op: OpShutdown}

	if !f.active {
		call.Err = client.ErrNoSession
	} else {
		f.active = false
		call.Err = f.failShutdown[f.shutdowns]
	}
	f.calls = append(f.calls, call)
	return call.Err
}

// Calls returns a copy of every recorded call in order.
func (f *FakeCollaborator) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// InitCount returns the number of Init attempts.
func (f *FakeCollaborator) InitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits
}

// ShutdownCount returns the number of Shutdown attempts.
func (f *FakeCollaborator) ShutdownCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdowns
}

// Active reports whether a session is open.
func (f *FakeCollaborator) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}
