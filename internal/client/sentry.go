package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// DefaultFlushTimeout bounds how long Shutdown waits for buffered events.
const DefaultFlushTimeout = 2 * time.Second

var (
	// ErrSessionActive is returned by Init while a previous session is still open.
	ErrSessionActive = errors.New("client: session already active")

	// ErrNoSession is returned by Shutdown without a preceding successful Init.
	ErrNoSession = errors.New("client: no active session")

	// ErrFlushTimeout is returned by Shutdown when buffered events could not be
	// delivered in time. The session is torn down regardless.
	ErrFlushTimeout = errors.New("client: flush timed out")
)

// SentryConfig configures the sentry-go collaborator.
type SentryConfig struct {
	// DSN is the project DSN. Empty selects sentry-go's no-op transport.
	DSN string

	// Debug turns on sentry-go's own diagnostic logging.
	Debug bool

	// FlushTimeout bounds Shutdown. Zero means DefaultFlushTimeout.
	FlushTimeout time.Duration

	// Hub is the hub sessions are bound to. Nil means sentry.CurrentHub().
	Hub *sentry.Hub
}

// Sentry drives a sentry-go client through Init/Shutdown cycles.
//
// The client is bound to a single hub, which for the default configuration is
// the process-wide hub. Sentry refuses overlapping sessions rather than
// silently rebinding.
type Sentry struct {
	cfg SentryConfig
	hub *sentry.Hub

	mu     sync.Mutex
	client *sentry.Client
}

// NewSentry returns a collaborator for cfg.
func NewSentry(cfg SentryConfig) *Sentry {
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	hub := cfg.Hub
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &Sentry{cfg: cfg, hub: hub}
}

// Init consumes opts, builds a sentry client for it and binds it to the hub.
func (s *Sentry) Init(opts *Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return ErrSessionActive
	}

	snap, err := opts.Consume()
	if err != nil {
		return err
	}

	c, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         s.cfg.DSN,
		Environment: snap.Environment,
		Debug:       s.cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}

	s.hub.BindClient(c)
	s.client = c
	return nil
}

// Shutdown flushes the active client, unbinds it from the hub and closes it.
func (s *Sentry) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return ErrNoSession
	}

	flushed := s.client.Flush(s.cfg.FlushTimeout)
	s.hub.BindClient(nil)
	// Close stops the transport worker; without it every cycle leaves one behind.
	s.client.Close()
	s.client = nil

	if !flushed {
		return fmt.Errorf("%w after %s", ErrFlushTimeout, s.cfg.FlushTimeout)
	}
	return nil
}

// Active reports whether a session is currently open.
func (s *Sentry) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}
