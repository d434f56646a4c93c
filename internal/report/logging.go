package report

import (
	"log/slog"

	"github.com/roach88/testrig/internal/engine"
)

// Logging writes runner messages as structured log records.
type Logging struct {
	Logger *slog.Logger
}

// NewLogging creates a Logging listener. If logger is nil, slog.Default()
// is used.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{Logger: logger}
}

// Handle implements engine.Listener.
func (l *Logging) Handle(msg engine.Message) {
	switch msg.Type {
	case engine.MessageSuccess:
		l.Logger.Debug("test_succeeded",
			slog.String("run_id", msg.RunID),
			slog.String("suite", msg.Suite),
			slog.String("test", msg.AssertionText),
			slog.Int64("seq", msg.Seq),
			slog.Duration("duration", msg.Duration),
		)
	case engine.MessageFailure:
		l.Logger.Info("test_failed",
			slog.String("run_id", msg.RunID),
			slog.String("suite", msg.Suite),
			slog.String("test", msg.AssertionText),
			slog.Int64("seq", msg.Seq),
			slog.String("code", string(engine.CodeOf(msg.Err))),
			slog.Any("error", msg.Err),
		)
	case engine.MessageReport:
		l.Logger.Info("suite_report",
			slog.String("run_id", msg.RunID),
			slog.Int("success", msg.SuccessCount),
			slog.Int("failure", msg.FailureCount),
		)
	}
}
