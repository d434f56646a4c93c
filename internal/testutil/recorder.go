// Package testutil provides deterministic helpers for testing code built on
// the testrig engine.
package testutil

import (
	"sync"

	"github.com/roach88/testrig/internal/engine"
)

// Recorder is an engine.Listener that keeps every message it receives.
// Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	msgs []engine.Message
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Handle implements engine.Listener.
func (r *Recorder) Handle(msg engine.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of the recorded messages in delivery order.
func (r *Recorder) Messages() []engine.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Types returns the type of each recorded message.
func (r *Recorder) Types() []engine.MessageType {
	msgs := r.Messages()
	out := make([]engine.MessageType, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

// AssertionTexts returns the assertion text of each success or failure
// message, skipping reports.
func (r *Recorder) AssertionTexts() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Type == engine.MessageReport {
			continue
		}
		out = append(out, m.AssertionText)
	}
	return out
}

// Failures returns the failure messages.
func (r *Recorder) Failures() []engine.Message {
	var out []engine.Message
	for _, m := range r.Messages() {
		if m.Type == engine.MessageFailure {
			out = append(out, m)
		}
	}
	return out
}

// Reports returns the report messages.
func (r *Recorder) Reports() []engine.Message {
	var out []engine.Message
	for _, m := range r.Messages() {
		if m.Type == engine.MessageReport {
			out = append(out, m)
		}
	}
	return out
}

// Reset discards recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
