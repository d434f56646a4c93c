package engine

import "time"

// Defaults applied to a Suspension when neither the Wait call nor the
// Runner configures them.
const (
	DefaultWaitTimeout = time.Second
	DefaultWaitMessage = "Wait timed out."
)

// WaitOption configures a Suspension requested with T.Wait.
type WaitOption func(*Suspension)

// WithTimeout bounds how long the test may stay suspended.
// Non-positive durations keep the default.
func WithTimeout(d time.Duration) WaitOption {
	return func(s *Suspension) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMessage sets the message carried by the timeout failure.
func WithMessage(message string) WaitOption {
	return func(s *Suspension) {
		if message != "" {
			s.message = message
		}
	}
}

// WithCancel registers a function invoked when the suspension is released,
// whichever way it ends. Use it to abandon a pending external call.
func WithCancel(fn func()) WaitOption {
	return func(s *Suspension) {
		s.cancelFn = fn
	}
}

// WithTimer registers a timer owned by the test; it is stopped when the
// suspension is released.
func WithTimer(timer *time.Timer) WaitOption {
	return func(s *Suspension) {
		s.handle = timer
	}
}

// Suspension is a pending asynchronous outcome for one test execution.
//
// It is created by T.Wait while the body runs, armed when the body returns,
// and released exactly once: by Resume, by an asynchronous failure, by its
// timeout, or by cancellation of the run context. All fields are guarded by
// the owning T's mutex.
type Suspension struct {
	t *T

	timeout  time.Duration
	message  string
	cancelFn func()
	handle   *time.Timer

	timer    *time.Timer
	released bool
}

// Timeout returns the configured timeout.
func (s *Suspension) Timeout() time.Duration {
	return s.timeout
}

// Message returns the message used if the suspension times out.
func (s *Suspension) Message() string {
	return s.message
}

// Resume signals that the awaited asynchronous work succeeded.
// It reports whether this call decided the test's outcome.
func (s *Suspension) Resume() bool {
	if s.t == nil {
		return false
	}
	return s.t.Resume()
}

// startTimeout arms the expiry timer. Caller holds t.mu.
func (s *Suspension) startTimeout() {
	t := s.t
	message := s.message
	s.timer = time.AfterFunc(s.timeout, func() {
		t.settle(newTimeoutError(message))
	})
}

// cancel disarms the timeout and the test's timer handle, and returns the
// test's cancel function for the caller to invoke once t.mu is released.
// Caller holds t.mu.
func (s *Suspension) cancel() func() {
	if s.released {
		return nil
	}
	s.released = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.handle != nil {
		s.handle.Stop()
	}
	return s.cancelFn
}
