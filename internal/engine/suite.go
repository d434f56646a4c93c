package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/text/unicode/norm"
)

// HookFunc is a setUp or tearDown hook. It runs in the suite's scope.
type HookFunc func(s *Suite) error

// Case pairs an assertion text with a test body.
type Case struct {
	Name string
	Fn   Func
}

// SuiteConfig describes a suite. Tests run in Cases order.
type SuiteConfig struct {
	Name     string
	Runner   *Runner
	SetUp    HookFunc
	TearDown HookFunc
	Cases    []Case
}

// Suite is an ordered collection of tests sharing hooks and a Runner.
type Suite struct {
	name     string
	tests    []*Test
	runner   *Runner
	setUp    HookFunc
	tearDown HookFunc
}

// NewSuite validates cfg and builds a Suite.
//
// Validation rules:
//   - Runner is required
//   - every case needs a non-empty name and a function
//   - names are unique after Unicode NFC normalization
func NewSuite(cfg SuiteConfig) (*Suite, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("suite %q: runner is required", cfg.Name)
	}

	s := &Suite{
		name:     cfg.Name,
		tests:    make([]*Test, 0, len(cfg.Cases)),
		runner:   cfg.Runner,
		setUp:    cfg.SetUp,
		tearDown: cfg.TearDown,
	}

	seen := make(map[string]int, len(cfg.Cases))
	var errs []error
	for i, c := range cfg.Cases {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("case %d: name is required", i))
			continue
		}
		if c.Fn == nil {
			errs = append(errs, fmt.Errorf("case %q: function is required", c.Name))
			continue
		}
		key := NormalizeName(c.Name)
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("case %q: duplicates case %d", c.Name, prev))
			continue
		}
		seen[key] = i
		s.tests = append(s.tests, NewTest(c.Name, c.Fn))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("suite %q: %w", cfg.Name, errors.Join(errs...))
	}
	return s, nil
}

// NormalizeName returns the NFC form of a test or suite name, so names that
// render identically compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// Name returns the suite name.
func (s *Suite) Name() string {
	return s.name
}

// Tests returns the suite's tests in run order.
func (s *Suite) Tests() []*Test {
	out := make([]*Test, len(s.tests))
	copy(out, s.tests)
	return out
}

// Runner returns the Runner outcomes are logged to.
func (s *Suite) Runner() *Runner {
	return s.runner
}

// Run executes the tests one at a time and returns the Runner's report.
//
// For each test: setUp, the test, wait for its completion, tearDown
// (whatever the outcome), then the next test. Each outcome is logged to the
// Runner; after the last test the Runner reports exactly once. Run blocks
// while a test is suspended.
//
// Once ctx is cancelled, a suspended test fails with CANCELLED and the
// remaining tests are logged as CANCELLED failures without running.
func (s *Suite) Run(ctx context.Context) Report {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.runner.logger

	logger.Debug("suite starting", "suite", s.name, "tests", len(s.tests))
	for _, tc := range s.tests {
		if err := ctx.Err(); err != nil {
			s.runner.log(ResultFailure, s.name, tc, normalize(tc.name, ErrCodeCancelled, newCancelledError(err)), 0)
			continue
		}
		s.runOne(ctx, tc)
	}

	rep := s.runner.Report()
	logger.Debug("suite finished", "suite", s.name,
		"success", rep.SuccessCount,
		"failure", rep.FailureCount,
	)
	return rep
}

// runOne runs a single test between the suite hooks.
func (s *Suite) runOne(ctx context.Context, tc *Test) {
	defer s.runHook("tearDown", tc, s.tearDown)

	if err := s.runHook("setUp", tc, s.setUp); err != nil {
		s.runner.log(ResultFailure, s.name, tc, &TestError{
			Code:    ErrCodeSetUp,
			Message: fmt.Sprintf("setUp failed: %v", err),
			Test:    tc.name,
			Err:     err,
		}, 0)
		return
	}

	start := time.Now()
	t := tc.Run(ctx, s, Callbacks{
		OnSuccess: func() {
			s.runner.log(ResultSuccess, s.name, tc, nil, time.Since(start))
		},
		OnFailure: func(err error) {
			s.runner.log(ResultFailure, s.name, tc, err, time.Since(start))
		},
	})
	<-t.Done()
}

// runHook calls hook, converting a panic into an error. tearDown failures
// are logged only; the test's outcome has already been reported.
func (s *Suite) runHook(name string, tc *Test, hook HookFunc) (err error) {
	if hook == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
		if err != nil && name == "tearDown" {
			s.runner.logger.Warn("tearDown failed", "suite", s.name, "test", tc.name, "error", err)
		}
	}()
	return hook(s)
}

// SuiteBuilder assembles a SuiteConfig fluently:
//
//	s, err := engine.NewSuiteBuilder("math", runner).
//	    SetUp(reset).
//	    Test("adds numbers", addsNumbers).
//	    Build()
type SuiteBuilder struct {
	cfg SuiteConfig
}

// NewSuiteBuilder starts a suite bound to runner.
func NewSuiteBuilder(name string, runner *Runner) *SuiteBuilder {
	return &SuiteBuilder{cfg: SuiteConfig{Name: name, Runner: runner}}
}

// SetUp sets the hook run before each test.
func (b *SuiteBuilder) SetUp(fn HookFunc) *SuiteBuilder {
	b.cfg.SetUp = fn
	return b
}

// TearDown sets the hook run after each test, whatever its outcome.
func (b *SuiteBuilder) TearDown(fn HookFunc) *SuiteBuilder {
	b.cfg.TearDown = fn
	return b
}

// Test appends a test case.
func (b *SuiteBuilder) Test(name string, fn Func) *SuiteBuilder {
	b.cfg.Cases = append(b.cfg.Cases, Case{Name: name, Fn: fn})
	return b
}

// Config returns the accumulated configuration.
func (b *SuiteBuilder) Config() SuiteConfig {
	return b.cfg
}

// Build validates the configuration and returns the suite.
func (b *SuiteBuilder) Build() (*Suite, error) {
	return NewSuite(b.cfg)
}
