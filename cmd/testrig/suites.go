package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roach88/testrig"
)

func registerSuites(reg *testrig.Registry) {
	reg.MustRegister("math", mathSuite)
	reg.MustRegister("strings", stringsSuite)
	reg.MustRegister("async", asyncSuite)
}

func mathSuite(r *testrig.Runner) (*testrig.Suite, error) {
	return testrig.NewSuiteBuilder("math", r).
		Test("adds numbers", func(t *testrig.T) error {
			t.Check(1+1 == 2, "1+1 should be 2")
			return nil
		}).
		Test("divides numbers", func(t *testrig.T) error {
			q, err := divide(6, 3)
			if err != nil {
				return err
			}
			t.Checkf(q == 2, "expected 2, got %d", q)
			return nil
		}).
		Test("rejects division by zero", func(t *testrig.T) error {
			_, err := divide(1, 0)
			t.Check(errors.Is(err, errDivideByZero), "expected errDivideByZero")
			return nil
		}).
		Build()
}

var errDivideByZero = errors.New("divide by zero")

func divide(a, b int) (int, error) {
	if b == 0 {
		return 0, errDivideByZero
	}
	return a / b, nil
}

// stringsSuite shares a builder between tests; setUp resets it.
func stringsSuite(r *testrig.Runner) (*testrig.Suite, error) {
	var sb strings.Builder
	return testrig.NewSuiteBuilder("strings", r).
		SetUp(func(*testrig.Suite) error {
			sb.Reset()
			return nil
		}).
		Test("starts empty", func(t *testrig.T) error {
			t.Check(sb.Len() == 0, "builder should be empty")
			sb.WriteString("dirty")
			return nil
		}).
		Test("is reset between tests", func(t *testrig.T) error {
			t.Checkf(sb.Len() == 0, "builder holds %q", sb.String())
			return nil
		}).
		Build()
}

// asyncSuite exercises suspension: a resumed callback, a failed async
// check, and an expected timeout.
func asyncSuite(r *testrig.Runner) (*testrig.Suite, error) {
	return testrig.NewSuiteBuilder("async", r).
		Test("callback resumes", func(t *testrig.T) error {
			s := t.Wait(testrig.WithTimeout(500 * time.Millisecond))
			fetch(func(v string) {
				if v != "pong" {
					t.Fail(fmt.Errorf("unexpected reply %q", v))
					return
				}
				s.Resume()
			})
			return nil
		}).
		Test("fan-in resumes once", func(t *testrig.T) error {
			s := t.Wait()
			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					time.Sleep(time.Millisecond)
				}()
			}
			go func() {
				wg.Wait()
				s.Resume()
			}()
			return nil
		}).
		Test("times out", func(t *testrig.T) error {
			t.Wait(testrig.WithTimeout(50*time.Millisecond), testrig.WithMessage("reply never arrived"))
			return nil
		}).
		Build()
}

// fetch delivers "pong" on another goroutine.
func fetch(cb func(string)) {
	time.AfterFunc(10*time.Millisecond, func() { cb("pong") })
}
