// Package testutil provides deterministic stand-ins for the harness's
// external dependencies.
//
// FakeCollaborator records every lifecycle call and can be told to fail a
// particular init or shutdown attempt. FixedRunIDGenerator pins run IDs so
// golden output does not change between runs.
package testutil
