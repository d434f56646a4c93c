// Package report provides ready-made Runner listeners: a console renderer
// for humans and a slog renderer for logs.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/roach88/testrig/internal/engine"
)

// Console renders runner messages as one line each:
//
//	success : adds numbers
//	failure : async timeout : "too slow"
//	report : success: 1 failure: 1
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	durations bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithDurations appends each test's duration to its line.
func WithDurations() ConsoleOption {
	return func(c *Console) {
		c.durations = true
	}
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{w: w}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle implements engine.Listener.
func (c *Console) Handle(msg engine.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, c.format(msg))
}

func (c *Console) format(msg engine.Message) string {
	if msg.Type == engine.MessageReport {
		return fmt.Sprintf("report : success: %d failure: %d", msg.SuccessCount, msg.FailureCount)
	}

	line := fmt.Sprintf("%s : %s", msg.Type, msg.AssertionText)
	if msg.Err != nil && msg.Err.Error() != "" {
		line += fmt.Sprintf(" : \"%s\"", msg.Err.Error())
	}
	if c.durations {
		line += fmt.Sprintf(" (%s)", msg.Duration.Round(time.Millisecond))
	}
	return line
}
