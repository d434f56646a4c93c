package testrig

import (
	"io"
	"log/slog"
	"os"

	"github.com/roach88/testrig/internal/cli"
	"github.com/roach88/testrig/internal/engine"
	"github.com/roach88/testrig/internal/harness"
	"github.com/roach88/testrig/internal/report"
)

// Re-export key types so users don't need to dig into internal packages.

type (
	T            = engine.T
	Func         = engine.Func
	Test         = engine.Test
	State        = engine.State
	Callbacks    = engine.Callbacks
	Suspension   = engine.Suspension
	WaitOption   = engine.WaitOption
	Suite        = engine.Suite
	SuiteConfig  = engine.SuiteConfig
	SuiteBuilder = engine.SuiteBuilder
	Case         = engine.Case
	HookFunc     = engine.HookFunc
	Runner       = engine.Runner
	RunnerOption = engine.RunnerOption
	Listener     = engine.Listener
	ListenerFunc = engine.ListenerFunc
	Message      = engine.Message
	MessageType  = engine.MessageType
	Report       = engine.Report
	Result       = engine.Result
	TestError    = engine.TestError
	ErrorCode    = engine.ErrorCode
	PanicError   = engine.PanicError
	IDGenerator  = engine.IDGenerator
	Registry     = harness.Registry
	SuiteFactory = harness.SuiteFactory
)

// Re-export outcome and message values for convenience.

const (
	ResultSuccess = engine.ResultSuccess
	ResultFailure = engine.ResultFailure

	MessageSuccess = engine.MessageSuccess
	MessageFailure = engine.MessageFailure
	MessageReport  = engine.MessageReport

	StateIdle      = engine.StateIdle
	StateRunning   = engine.StateRunning
	StateSuspended = engine.StateSuspended
	StateSucceeded = engine.StateSucceeded
	StateFailed    = engine.StateFailed
)

// Re-export error codes.

const (
	ErrCodeAssertion         = engine.ErrCodeAssertion
	ErrCodeAsyncAssertion    = engine.ErrCodeAsyncAssertion
	ErrCodeTimeout           = engine.ErrCodeTimeout
	ErrCodeTestError         = engine.ErrCodeTestError
	ErrCodePanic             = engine.ErrCodePanic
	ErrCodeSetUp             = engine.ErrCodeSetUp
	ErrCodeCancelled         = engine.ErrCodeCancelled
	ErrCodeSuspensionPending = engine.ErrCodeSuspensionPending
)

var ErrSuspensionPending = engine.ErrSuspensionPending

// Re-export constructors and options.

var (
	NewTest         = engine.NewTest
	NewSuite        = engine.NewSuite
	NewSuiteBuilder = engine.NewSuiteBuilder
	NewRegistry     = harness.NewRegistry

	WithTimeout = engine.WithTimeout
	WithMessage = engine.WithMessage
	WithCancel  = engine.WithCancel
	WithTimer   = engine.WithTimer

	WithListener     = engine.WithListener
	WithLogger       = engine.WithLogger
	WithIDGenerator  = engine.WithIDGenerator
	WithWaitDefaults = engine.WithWaitDefaults

	CodeOf      = engine.CodeOf
	IsTimeout   = engine.IsTimeout
	IsAssertion = engine.IsAssertion
	IsCancelled = engine.IsCancelled
)

// NewRunner creates a Runner. With addDefaultListener, a console listener
// writing to os.Stdout is registered first, ahead of any listener the
// options add.
func NewRunner(addDefaultListener bool, opts ...RunnerOption) *Runner {
	if addDefaultListener {
		opts = append([]RunnerOption{engine.WithListener(report.NewConsole(os.Stdout))}, opts...)
	}
	return engine.NewRunner(opts...)
}

// NewConsoleListener returns the listener NewRunner(true) installs, writing
// to w instead of os.Stdout.
func NewConsoleListener(w io.Writer) Listener {
	return report.NewConsole(w)
}

// NewLoggingListener returns a listener that writes one structured record
// per message.
func NewLoggingListener(logger *slog.Logger) Listener {
	return report.NewLogging(logger)
}

// Main runs the testrig command line against reg and exits the process
// with its exit code: 0 when every test passed, 1 on test failures, 2 on
// command errors.
func Main(reg *Registry) {
	os.Exit(cli.Execute(reg))
}
