// Package engine implements the testrig test lifecycle.
//
// ARCHITECTURE:
//
// Per-execution context:
// Every test run gets its own T. The T carries the execution state, the
// optional Suspension and the completion callbacks, so nothing about a
// running test lives in package-level state and suites on different
// goroutines cannot collide.
//
// Lifecycle:
//
//	Idle -> Running -> Succeeded | Failed               (synchronous body)
//	Idle -> Running -> Suspended -> Succeeded | Failed  (body called Wait)
//
// A suspended test is decided by the first of: Resume, a failed Check or
// Fail, its timeout, or cancellation of the run context. The outcome is
// settled exactly once; later signals are no-ops.
//
// Failure routing:
// The body runs on its own goroutine. A failed Check before Wait records the
// failure and ends the calling goroutine with runtime.Goexit, as
// testing.T.FailNow does; the test fails once the body has returned. Once
// Wait has been called, failures are routed to the suspension instead,
// because the caller is usually an asynchronous callback with no body left
// to abort. While the body is still running the first of Resume and a
// failure wins; misusing Wait fails the test regardless.
//
// Sequencing:
// Suite.Run executes tests strictly one at a time: setUp, test, wait for
// completion, tearDown, next. Outcomes go to the Runner, which counts them
// and fans them out to listeners in registration order, stamping each
// message with a seq number from its logical Clock.
package engine
