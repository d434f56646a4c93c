package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/roach88/testrig/internal/engine"
	"github.com/roach88/testrig/internal/harness"
)

// newTestRegistry registers three suites:
//   - "pass": one passing test
//   - "fail": one failed check
//   - "slow": one test that waits with the runner's default timeout
func newTestRegistry(t *testing.T) *harness.Registry {
	t.Helper()
	reg := harness.NewRegistry()
	reg.MustRegister("pass", func(r *engine.Runner) (*engine.Suite, error) {
		return engine.NewSuiteBuilder("pass", r).
			Test("adds numbers", func(t *engine.T) error {
				t.Check(1+1 == 2, "1+1 should be 2")
				return nil
			}).
			Build()
	})
	reg.MustRegister("fail", func(r *engine.Runner) (*engine.Suite, error) {
		return engine.NewSuiteBuilder("fail", r).
			Test("fails check", func(t *engine.T) error {
				t.Check(false, "X")
				return nil
			}).
			Build()
	})
	reg.MustRegister("slow", func(r *engine.Runner) (*engine.Suite, error) {
		return engine.NewSuiteBuilder("slow", r).
			Test("never resumes", func(t *engine.T) error {
				t.Wait()
				return nil
			}).
			Build()
	})
	return reg
}

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, reg *harness.Registry, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand(reg)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
