package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/testrig/internal/engine"
	"github.com/roach88/testrig/internal/report"
	"github.com/roach88/testrig/internal/store"
)

// ErrNoSuites is returned when no registered suite matches the filter.
var ErrNoSuites = errors.New("no suites to run")

// Options configures Run. The zero value runs every suite silently with the
// engine's default Wait settings.
type Options struct {
	// Output receives the console transcript. Nil disables the console.
	Output io.Writer

	// Durations appends test durations to console lines.
	Durations bool

	// Filter selects suites by glob; empty runs all.
	Filter string

	// WaitTimeout and WaitMessage override the Wait defaults when set.
	WaitTimeout time.Duration
	WaitMessage string

	// Logger receives engine diagnostics and, through report.Logging,
	// one record per outcome. Nil discards both.
	Logger *slog.Logger

	// Store, when set, persists the run's reports.
	Store *store.Store

	// IDGenerator overrides the run ID source.
	IDGenerator engine.IDGenerator

	// Listeners are attached after the built-in ones.
	Listeners []engine.Listener
}

// Run executes the registered suites matching opts.Filter against one
// shared Runner and returns the aggregate result.
//
// A factory error aborts the run before any later suite starts; outcomes
// already logged stay in the Runner's history. Once ctx is cancelled, the
// remaining tests of the current suite and all later suites are logged as
// CANCELLED failures.
func Run(ctx context.Context, reg *Registry, opts Options) (*Result, error) {
	entries, err := reg.Match(opts.Filter)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if opts.Filter != "" {
			return nil, fmt.Errorf("%w: filter %q matched nothing", ErrNoSuites, opts.Filter)
		}
		return nil, ErrNoSuites
	}

	runner := NewRunner(opts)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("run starting", "run_id", runner.ID(), "suites", len(entries))

	result := &Result{RunID: runner.ID(), Suites: make([]SuiteResult, 0, len(entries))}
	for _, e := range entries {
		suite, err := e.Factory(runner)
		if err != nil {
			return nil, fmt.Errorf("build suite %q: %w", e.Name, err)
		}
		if suite == nil {
			return nil, fmt.Errorf("build suite %q: factory returned no suite", e.Name)
		}
		if suite.Runner() != runner {
			return nil, fmt.Errorf("build suite %q: suite is not bound to the run's runner", e.Name)
		}

		before := runner.Counts()
		after := suite.Run(ctx)
		result.Suites = append(result.Suites, SuiteResult{
			Name:         e.Name,
			Tests:        len(suite.Tests()),
			SuccessCount: after.SuccessCount - before.SuccessCount,
			FailureCount: after.FailureCount - before.FailureCount,
		})
	}

	totals := runner.Counts()
	result.SuccessCount = totals.SuccessCount
	result.FailureCount = totals.FailureCount

	logger.Info("run finished", "run_id", runner.ID(),
		"success", result.SuccessCount,
		"failure", result.FailureCount,
	)
	return result, nil
}

// NewRunner builds the Runner Run uses: listeners are attached in the order
// console, logging, store recorder, then opts.Listeners.
func NewRunner(opts Options) *engine.Runner {
	runnerOpts := []engine.RunnerOption{
		engine.WithWaitDefaults(opts.WaitTimeout, opts.WaitMessage),
	}
	if opts.Logger != nil {
		runnerOpts = append(runnerOpts, engine.WithLogger(opts.Logger))
	}
	if opts.IDGenerator != nil {
		runnerOpts = append(runnerOpts, engine.WithIDGenerator(opts.IDGenerator))
	}
	if opts.Output != nil {
		var consoleOpts []report.ConsoleOption
		if opts.Durations {
			consoleOpts = append(consoleOpts, report.WithDurations())
		}
		runnerOpts = append(runnerOpts, engine.WithListener(report.NewConsole(opts.Output, consoleOpts...)))
	}
	if opts.Logger != nil {
		runnerOpts = append(runnerOpts, engine.WithListener(report.NewLogging(opts.Logger)))
	}
	if opts.Store != nil {
		var recOpts []store.RecorderOption
		if opts.Logger != nil {
			recOpts = append(recOpts, store.WithRecorderLogger(opts.Logger))
		}
		runnerOpts = append(runnerOpts, engine.WithListener(store.NewRecorder(opts.Store, recOpts...)))
	}
	for _, l := range opts.Listeners {
		runnerOpts = append(runnerOpts, engine.WithListener(l))
	}
	return engine.NewRunner(runnerOpts...)
}
