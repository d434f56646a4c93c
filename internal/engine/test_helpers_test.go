package engine

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// recorder captures runner messages for assertions.
type recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *recorder) Handle(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *recorder) types() []MessageType {
	var out []MessageType
	for _, m := range r.messages() {
		out = append(out, m.Type)
	}
	return out
}

// fixedID returns the same run ID every time.
type fixedID string

func (f fixedID) Generate() string { return string(f) }

// newTestRunner creates a runner with a discarded logger and a recorder.
func newTestRunner(t *testing.T, opts ...RunnerOption) (*Runner, *recorder) {
	t.Helper()
	rec := &recorder{}
	all := append([]RunnerOption{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(fixedID("run-test")),
		WithListener(rec),
	}, opts...)
	return NewRunner(all...), rec
}

// newTestSuite builds a suite or fails the test.
func newTestSuite(t *testing.T, cfg SuiteConfig) *Suite {
	t.Helper()
	s, err := NewSuite(cfg)
	if err != nil {
		t.Fatalf("NewSuite() failed: %v", err)
	}
	return s
}

// waitDone waits for an execution to settle or fails the test.
func waitDone(t *testing.T, x *T) {
	t.Helper()
	select {
	case <-x.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("test %q did not settle", x.Name())
	}
}
