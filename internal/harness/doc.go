// Package harness drives repeated init/shutdown cycles against a
// crash-reporting client and records what happened.
//
// A run prints a start banner, performs a fixed number of lifecycle cycles
// and prints an end banner:
//
//	run sentry-native tests
//	reach end :-D
//
// Nothing else is written to the output writer. Each cycle is:
//
//  1. build a fresh client.Options
//  2. set its environment tag
//  3. Init (ownership of the options moves to the collaborator)
//  4. Shutdown, only when Init succeeded
//
// # Failure Modes
//
// By default the harness is lenient. A failed cycle is recorded in the Result
// and logged at debug level, and the next cycle starts as usual. Every planned
// cycle is attempted and the end banner is printed.
//
// With WithStrict(true) the first failed cycle stops the run. Run returns a
// *CycleError and the end banner is not printed.
//
// # Plans
//
// A Plan is a YAML file that overrides the run parameters and lists
// assertions to evaluate against the recorded trace:
//
//	name: stress
//	description: "Ten release cycles"
//	cycles: 10
//	environment: release
//	assertions:
//	  - type: trace_count
//	    op: init
//	    count: 10
//	  - type: trace_order
//	    ops: [new_options, set_environment, init, shutdown]
//	  - type: lifecycle_paired
//
// # Deterministic Testing
//
// Trace sequence numbers are assigned by the harness, starting at 1 for each
// run. Run IDs come from a RunIDGenerator; tests pin them with
// testutil.FixedRunIDGenerator so FormatTrace output can be compared against
// golden files.
package harness
