package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Func is the body of a test. The T it receives is private to this
// execution; returning a non-nil error fails the test.
type Func func(t *T) error

// Test is a named unit of work. It is immutable after construction.
type Test struct {
	name string
	fn   Func
}

// NewTest creates a test. The name doubles as the assertion text shown by
// listeners, e.g. "adds numbers".
func NewTest(name string, fn Func) *Test {
	return &Test{name: name, fn: fn}
}

// Name returns the assertion text.
func (tc *Test) Name() string {
	return tc.name
}

// Fn returns the test body.
func (tc *Test) Fn() Func {
	return tc.fn
}

// Callbacks receive the outcome of Test.Run. Exactly one of OnSuccess and
// OnFailure fires, then OnComplete, each exactly once. Nil fields are skipped.
type Callbacks struct {
	OnSuccess  func()
	OnFailure  func(err error)
	OnComplete func()
}

// Run executes the body in the scope of suite and reports the outcome
// through cb.
//
// If the body finishes without requesting a suspension, the callbacks fire
// before Run returns. Otherwise they fire later, on whichever goroutine
// resumes, fails or times out the suspension. The returned T exposes the
// execution's state either way.
func (tc *Test) Run(ctx context.Context, suite *Suite, cb Callbacks) *T {
	t := newT(ctx, tc, suite)
	t.start(cb)
	return t
}

// Invoke executes the body and returns its execution without callbacks.
// The result is StateSucceeded or StateFailed for synchronous bodies and
// StateSuspended while an asynchronous outcome is pending; wait on Done.
func (tc *Test) Invoke(ctx context.Context, suite *Suite) *T {
	return tc.Run(ctx, suite, Callbacks{})
}

// State is the lifecycle state of one test execution.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSuspended
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// T is the execution context of one test run.
//
// The body uses it to check conditions, to request a suspension, and (from
// any goroutine) to resume or fail that suspension. All state is guarded by
// mu and the outcome is settled exactly once.
//
// The body runs on its own goroutine. Like testing.T.FailNow, a failing
// Check before Wait records the failure and ends the calling goroutine with
// runtime.Goexit: called from the body, it aborts the body; called from a
// helper goroutine, it ends only that goroutine and the test still fails
// when the body returns. After Wait, failures never abort; they are routed
// to the pending suspension.
type T struct {
	test   *Test
	suite  *Suite
	ctx    context.Context
	logger *slog.Logger

	waitTimeout time.Duration
	waitMessage string

	mu        sync.Mutex
	state     State
	susp      *Suspension
	early     error // failure routed while the body was still running
	resumed   bool  // Resume arrived while the body was still running
	err       error
	started   time.Time
	finished  time.Time
	stopCtx   func() bool
	callbacks Callbacks
	done      chan struct{}
}

func newT(ctx context.Context, tc *Test, suite *Suite) *T {
	if ctx == nil {
		ctx = context.Background()
	}
	t := &T{
		test:        tc,
		suite:       suite,
		ctx:         ctx,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		waitTimeout: DefaultWaitTimeout,
		waitMessage: DefaultWaitMessage,
		state:       StateIdle,
		done:        make(chan struct{}),
	}
	if suite != nil && suite.runner != nil {
		t.logger = suite.runner.logger
		t.waitTimeout, t.waitMessage = suite.runner.waitTimeout, suite.runner.waitMessage
	}
	return t
}

// Name returns the test's assertion text.
func (t *T) Name() string {
	return t.test.name
}

// Suite returns the suite the test runs in. It is nil for tests invoked
// outside a suite.
func (t *T) Suite() *Suite {
	return t.suite
}

// Context returns the run context.
func (t *T) Context() context.Context {
	return t.ctx
}

// Logger returns the logger of the owning runner.
func (t *T) Logger() *slog.Logger {
	return t.logger
}

// Check fails the test with message unless ok.
func (t *T) Check(ok bool, message string) {
	if ok {
		return
	}
	t.dispatch(false, func(async bool) *TestError {
		if async {
			return newAssertionError(ErrCodeAsyncAssertion, message)
		}
		return newAssertionError(ErrCodeAssertion, message)
	})
}

// Checkf is Check with a formatted message.
func (t *T) Checkf(ok bool, format string, args ...any) {
	if ok {
		return
	}
	t.Check(false, fmt.Sprintf(format, args...))
}

// Fail fails the test with err, routed like a failed Check. A nil err is
// ignored.
func (t *T) Fail(err error) {
	if err == nil {
		return
	}
	t.dispatch(false, func(async bool) *TestError {
		return normalize(t.test.name, ErrCodeTestError, err)
	})
}

// Wait asks for the test's outcome to be decided asynchronously. Call it at
// most once, from the body, before returning; the test then stays suspended
// until Resume, an asynchronous failure, or the timeout.
//
// A second Wait while one is pending fails the test with SUSPENSION_PENDING.
// The rejected suspension's cancel function and timer are released at once.
func (t *T) Wait(opts ...WaitOption) *Suspension {
	s := &Suspension{
		t:       t,
		timeout: t.waitTimeout,
		message: t.waitMessage,
	}
	for _, opt := range opts {
		opt(s)
	}

	t.mu.Lock()
	if t.susp == nil && t.state == StateRunning {
		t.susp = s
		t.mu.Unlock()
		return s
	}
	release := s.cancel()
	t.mu.Unlock()

	t.release(release)
	t.dispatch(true, func(bool) *TestError {
		return newSuspensionPendingError()
	})
	return s
}

// Resume signals that the awaited asynchronous work succeeded. It may be
// called from any goroutine and reports whether it was accepted: false once
// the outcome is decided or a failure was recorded first.
//
// A Resume that arrives before the body has returned, even before Wait, is
// remembered and settles the test as soon as the body returns with a
// suspension pending. A body that never calls Wait ignores it.
func (t *T) Resume() bool {
	t.mu.Lock()
	switch t.state {
	case StateRunning:
		if t.resumed || t.early != nil {
			t.mu.Unlock()
			return false
		}
		t.resumed = true
		t.mu.Unlock()
		return true
	case StateSuspended:
		t.mu.Unlock()
		return t.settle(nil)
	default:
		state := t.state
		t.mu.Unlock()
		t.logger.Debug("resume ignored", "test", t.test.name, "state", state.String())
		return false
	}
}

// State returns the current lifecycle state.
func (t *T) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure once the test has failed, nil otherwise.
func (t *T) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed after the outcome callbacks have run.
func (t *T) Done() <-chan struct{} {
	return t.done
}

// Duration returns how long the test ran, or has been running so far.
func (t *T) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started.IsZero() {
		return 0
	}
	if t.finished.IsZero() {
		return time.Since(t.started)
	}
	return t.finished.Sub(t.started)
}

// dispatch routes a failure according to the execution's phase.
//
// While the body runs the first failure is recorded. Before Wait the calling
// goroutine is then ended with runtime.Goexit; after Wait it carries on.
// Once a Resume has been accepted for a requested suspension, later
// failures are ignored unless misuse is set: the first signal wins, but
// misusing Wait always fails the test. A suspended test is settled directly.
func (t *T) dispatch(misuse bool, mk func(async bool) *TestError) {
	t.mu.Lock()
	switch t.state {
	case StateRunning:
		if t.susp == nil {
			if t.early == nil {
				t.early = mk(false)
			}
			t.mu.Unlock()
			runtime.Goexit()
		}
		if t.resumed && !misuse {
			t.mu.Unlock()
			t.logger.Debug("failure ignored after resume", "test", t.test.name, "error", mk(true).Error())
			return
		}
		if t.early == nil {
			t.early = mk(true)
		}
		t.mu.Unlock()
	case StateSuspended:
		t.mu.Unlock()
		t.settle(mk(true))
	default:
		state := t.state
		t.mu.Unlock()
		t.logger.Debug("failure ignored", "test", t.test.name, "state", state.String(), "error", mk(true).Error())
	}
}

// start runs the body and either settles the outcome or arms the suspension.
func (t *T) start(cb Callbacks) {
	t.mu.Lock()
	t.state = StateRunning
	t.started = time.Now()
	t.callbacks = cb
	t.mu.Unlock()

	err := t.invokeBody()

	t.mu.Lock()
	switch {
	case err != nil:
		t.mu.Unlock()
		t.settle(err)
	case t.early != nil:
		early := t.early
		t.mu.Unlock()
		t.settle(early)
	case t.susp == nil:
		t.mu.Unlock()
		t.settle(nil)
	case t.resumed:
		t.mu.Unlock()
		t.settle(nil)
	default:
		t.state = StateSuspended
		t.susp.startTimeout()
		if t.ctx.Done() != nil {
			t.stopCtx = context.AfterFunc(t.ctx, func() {
				t.settle(newCancelledError(context.Cause(t.ctx)))
			})
		}
		timeout := t.susp.timeout
		t.mu.Unlock()
		t.logger.Debug("test suspended", "test", t.test.name, "timeout", timeout)
	}
}

// invokeBody runs the body on its own goroutine and waits for it,
// converting a returned error or a panic into a TestError. A body ended by
// runtime.Goexit yields nil; its failure is already recorded in t.early.
func (t *T) invokeBody() error {
	if t.test.fn == nil {
		return &TestError{Code: ErrCodeTestError, Message: "test has no function"}
	}

	result := make(chan error, 1)
	go func() {
		returned := false
		defer func() {
			if r := recover(); r != nil {
				pe := &PanicError{Value: r, Stack: debug.Stack()}
				result <- &TestError{Code: ErrCodePanic, Message: pe.Error(), Err: pe}
				return
			}
			if !returned {
				result <- nil
			}
		}()

		rerr := t.test.fn(t)
		returned = true
		if rerr != nil {
			result <- normalize(t.test.name, ErrCodeTestError, rerr)
			return
		}
		result <- nil
	}()
	return <-result
}

// settle records the outcome, releases the suspension, runs the callbacks
// and closes Done. Only the first call has any effect; it reports whether
// this call was that one.
func (t *T) settle(err error) bool {
	t.mu.Lock()
	if t.state != StateRunning && t.state != StateSuspended {
		t.mu.Unlock()
		return false
	}
	if err != nil {
		t.err = normalize(t.test.name, ErrCodeTestError, err)
		t.state = StateFailed
	} else {
		t.state = StateSucceeded
	}
	t.finished = time.Now()

	var release func()
	if t.susp != nil {
		release = t.susp.cancel()
	}
	stop := t.stopCtx
	t.stopCtx = nil
	cb := t.callbacks
	final := t.err
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
	t.release(release)

	if final != nil {
		if cb.OnFailure != nil {
			cb.OnFailure(final)
		}
	} else if cb.OnSuccess != nil {
		cb.OnSuccess()
	}
	if cb.OnComplete != nil {
		cb.OnComplete()
	}
	close(t.done)
	return true
}

// release invokes a suspension's cancel function, shielding the caller
// (often a timer goroutine) from a panic inside it.
func (t *T) release(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("suspension cancel function panicked", "test", t.test.name, "panic", r)
		}
	}()
	fn()
}
