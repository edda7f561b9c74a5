package client

import (
	"errors"
	"sync"
)

// ErrConsumed is returned when Options are used after Init took ownership.
var ErrConsumed = errors.New("client: options already consumed by init")

// Options is the configuration handed to Collaborator.Init.
//
// A fresh Options is built for every lifecycle cycle. Ownership moves to the
// collaborator at Init; afterwards SetEnvironment and a second Init both fail
// with ErrConsumed.
type Options struct {
	mu          sync.Mutex
	environment string
	consumed    bool
}

// NewOptions allocates an empty configuration.
func NewOptions() *Options {
	return &Options{}
}

// SetEnvironment sets the environment tag reported with every event.
func (o *Options) SetEnvironment(tag string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.consumed {
		return ErrConsumed
	}
	o.environment = tag
	return nil
}

// Environment returns the environment tag.
func (o *Options) Environment() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.environment
}

// Consumed reports whether Init has taken ownership of o.
func (o *Options) Consumed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.consumed
}

// Consume marks o as owned by a collaborator and returns a snapshot of its
// fields. Collaborator implementations call it exactly once at the top of Init.
func (o *Options) Consume() (Snapshot, error) {
	if o == nil {
		return Snapshot{}, errors.New("client: nil options")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.consumed {
		return Snapshot{}, ErrConsumed
	}
	o.consumed = true
	return Snapshot{Environment: o.environment}, nil
}

// Snapshot is the immutable view of Options a collaborator works from.
type Snapshot struct {
	Environment string
}

// Collaborator is the external client lifecycle driven by the harness.
type Collaborator interface {
	// Init consumes opts and starts the client session.
	Init(opts *Options) error

	// Shutdown tears down the session started by the last successful Init.
	Shutdown() error
}
