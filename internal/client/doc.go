// Package client defines the lifecycle contract between the smoke harness and
// a crash-reporting client.
//
// The harness only ever sees two things:
//
//   - Options: a per-cycle configuration value carrying the environment tag.
//     Init consumes it; once consumed it can no longer be mutated or reused.
//   - Collaborator: the Init/Shutdown pair that moves the process-wide client
//     session between Uninitialized and Active.
//
// Sentry is the production Collaborator backed by github.com/getsentry/sentry-go.
// Tests substitute testutil.FakeCollaborator so the harness can be exercised
// without touching the real global hub.
//
// # Session Rules
//
// Only one session exists per Collaborator at a time:
//
//	Uninitialized --Init--> Active --Shutdown--> Uninitialized
//
// Init while Active returns ErrSessionActive. Shutdown while Uninitialized
// returns ErrNoSession.
package client
