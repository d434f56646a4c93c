package engine

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Result is the outcome a Runner logs for one test.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// MessageType identifies what a Message announces.
type MessageType string

const (
	MessageSuccess MessageType = "success"
	MessageFailure MessageType = "failure"
	MessageReport  MessageType = "report"
)

// Message is what listeners receive.
//
// Success and failure messages describe one test (AssertionText, TestFn and,
// for failures, Err). Report messages carry the Runner's accumulated counts.
type Message struct {
	Type  MessageType
	Seq   int64
	RunID string

	// Test fields (success, failure).
	Suite         string
	AssertionText string
	TestFn        Func
	Err           error
	Duration      time.Duration

	// Report fields.
	SuccessCount int
	FailureCount int
}

// Report is the Runner's accumulated counts at one point in time.
type Report struct {
	RunID        string
	SuccessCount int
	FailureCount int
}

// Total returns the number of tests logged.
func (r Report) Total() int {
	return r.SuccessCount + r.FailureCount
}

// Passed reports whether no test has failed.
func (r Report) Passed() bool {
	return r.FailureCount == 0
}

// Listener receives Runner messages.
//
// Implementations should be fast; they run on whichever goroutine settled the
// test. A Listener must not call back into the Runner's Log or Report.
type Listener interface {
	Handle(msg Message)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(msg Message)

// Handle calls f(msg).
func (f ListenerFunc) Handle(msg Message) {
	f(msg)
}

// Runner aggregates test outcomes and fans them out to listeners.
//
// A Runner may be shared by several suites; its counts accumulate for its
// whole lifetime and are never reset. Deliveries to listeners are serialized
// so each listener sees messages in Seq order.
type Runner struct {
	id     string
	clock  *Clock
	logger *slog.Logger

	waitTimeout time.Duration
	waitMessage string

	mu           sync.Mutex
	listeners    []Listener
	successCount int
	failureCount int

	// notifyMu serializes deliveries; it is taken before mu.
	notifyMu sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithListener registers a listener at construction time.
func WithListener(l Listener) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
}

// WithLogger sets the logger used by the Runner and the tests it runs.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator sets the generator for the run ID.
// Default: UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) RunnerOption {
	return func(r *Runner) {
		if gen != nil {
			r.id = gen.Generate()
		}
	}
}

// WithWaitDefaults sets the timeout and message used by T.Wait when the
// test does not supply its own. Zero values keep the package defaults.
func WithWaitDefaults(timeout time.Duration, message string) RunnerOption {
	return func(r *Runner) {
		if timeout > 0 {
			r.waitTimeout = timeout
		}
		if message != "" {
			r.waitMessage = message
		}
	}
}

// NewRunner creates a Runner with no listeners unless options add some.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		clock:       NewClock(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		waitTimeout: DefaultWaitTimeout,
		waitMessage: DefaultWaitMessage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.id == "" {
		r.id = UUIDv7Generator{}.Generate()
	}
	return r
}

// ID returns the run ID.
func (r *Runner) ID() string {
	return r.id
}

// AddListener appends a listener. It receives every later message.
func (r *Runner) AddListener(l Listener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Log records the outcome of test and notifies listeners. err is the
// failure for ResultFailure and ignored otherwise.
func (r *Runner) Log(result Result, test *Test, err error) {
	r.log(result, "", test, err, 0)
}

func (r *Runner) log(result Result, suite string, test *Test, err error, d time.Duration) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	msg := Message{
		Type:     MessageSuccess,
		RunID:    r.id,
		Suite:    suite,
		Duration: d,
	}
	if test != nil {
		msg.AssertionText = test.name
		msg.TestFn = test.fn
	}

	r.mu.Lock()
	if result == ResultSuccess {
		r.successCount++
	} else {
		r.failureCount++
		msg.Type = MessageFailure
		msg.Err = err
	}
	msg.Seq = r.clock.Next()
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	r.notify(listeners, msg)
}

// Report notifies listeners of the current totals and returns them.
func (r *Runner) Report() Report {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	rep := Report{
		RunID:        r.id,
		SuccessCount: r.successCount,
		FailureCount: r.failureCount,
	}
	msg := Message{
		Type:         MessageReport,
		Seq:          r.clock.Next(),
		RunID:        r.id,
		SuccessCount: rep.SuccessCount,
		FailureCount: rep.FailureCount,
	}
	listeners := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	r.notify(listeners, msg)
	return rep
}

// Counts returns the accumulated counts without notifying anyone.
func (r *Runner) Counts() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Report{RunID: r.id, SuccessCount: r.successCount, FailureCount: r.failureCount}
}

// notify delivers msg to each listener in registration order. A panicking
// listener is logged and skipped; the others still receive the message.
func (r *Runner) notify(listeners []Listener, msg Message) {
	for i, l := range listeners {
		func() {
			defer func() {
				if p := recover(); p != nil {
					r.logger.Error("listener panicked",
						"listener", i,
						"message", string(msg.Type),
						"seq", msg.Seq,
						"panic", p,
					)
				}
			}()
			l.Handle(msg)
		}()
	}
}
