package harness

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/testrig/internal/engine"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mathSuite(r *engine.Runner) (*engine.Suite, error) {
	return engine.NewSuiteBuilder("math", r).
		Test("adds numbers", func(t *engine.T) error {
			t.Check(1+1 == 2, "1+1 should be 2")
			return nil
		}).
		Test("subtracts numbers", func(t *engine.T) error {
			got := 3 - 2
			t.Checkf(got == 2, "expected 2, got %d", got)
			return nil
		}).
		Build()
}

func asyncSuite(r *engine.Runner) (*engine.Suite, error) {
	return engine.NewSuiteBuilder("async", r).
		Test("resumes later", func(t *engine.T) error {
			s := t.Wait()
			time.AfterFunc(5*time.Millisecond, func() { s.Resume() })
			return nil
		}).
		Test("never resumes", func(t *engine.T) error {
			t.Wait(engine.WithTimeout(10*time.Millisecond), engine.WithMessage("callback never fired"))
			return nil
		}).
		Build()
}

// newExampleRegistry registers the math and async suites.
func newExampleRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register("math", mathSuite))
	require.NoError(t, reg.Register("async", asyncSuite))
	return reg
}

func failingFactory(r *engine.Runner) (*engine.Suite, error) {
	return nil, fmt.Errorf("fixture missing")
}
