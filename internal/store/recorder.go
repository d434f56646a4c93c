package store

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/testrig/internal/engine"
)

// Recorder is an engine.Listener that persists every report.
//
// Write failures are logged, never returned: a broken history database
// must not change test outcomes.
type Recorder struct {
	store   *Store
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger for write failures.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNow sets the time source used to stamp reports.
func WithNow(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a Recorder writing to s.
func NewRecorder(s *Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:   s,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle implements engine.Listener.
func (r *Recorder) Handle(msg engine.Message) {
	if msg.Type != engine.MessageReport {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.WriteReport(ctx, msg.RunID, msg.SuccessCount, msg.FailureCount, r.now()); err != nil {
		r.logger.Error("failed to record run",
			"run_id", msg.RunID,
			"seq", msg.Seq,
			"error", err,
		)
	}
}
