package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuite_Validation(t *testing.T) {
	r, _ := newTestRunner(t)
	ok := func(t *T) error { return nil }

	tests := []struct {
		name    string
		cfg     SuiteConfig
		wantErr string
	}{
		{
			name:    "missing runner",
			cfg:     SuiteConfig{Name: "s", Cases: []Case{{Name: "a b", Fn: ok}}},
			wantErr: "runner is required",
		},
		{
			name:    "empty name",
			cfg:     SuiteConfig{Name: "s", Runner: r, Cases: []Case{{Name: "", Fn: ok}}},
			wantErr: "case 0: name is required",
		},
		{
			name:    "nil function",
			cfg:     SuiteConfig{Name: "s", Runner: r, Cases: []Case{{Name: "no fn"}}},
			wantErr: `case "no fn": function is required`,
		},
		{
			name: "duplicate name",
			cfg: SuiteConfig{Name: "s", Runner: r, Cases: []Case{
				{Name: "same", Fn: ok},
				{Name: "same", Fn: ok},
			}},
			wantErr: `case "same": duplicates case 0`,
		},
		{
			// "é" precomposed vs "e" + combining acute accent
			name: "duplicate after normalization",
			cfg: SuiteConfig{Name: "s", Runner: r, Cases: []Case{
				{Name: "caf\u00e9", Fn: ok},
				{Name: "cafe\u0301", Fn: ok},
			}},
			wantErr: "duplicates case 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSuite(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewSuite_NamesWithoutWhitespaceAreTests(t *testing.T) {
	r, _ := newTestRunner(t)
	s := newTestSuite(t, SuiteConfig{Name: "s", Runner: r, Cases: []Case{
		{Name: "nowhitespace", Fn: func(t *T) error { return nil }},
		{Name: "with whitespace", Fn: func(t *T) error { return nil }},
	}})

	tests := s.Tests()
	require.Len(t, tests, 2)
	assert.Equal(t, "nowhitespace", tests[0].Name())
	assert.Equal(t, "with whitespace", tests[1].Name())
}

func TestSuiteRun_AddsNumbers(t *testing.T) {
	r, rec := newTestRunner(t)
	s := newTestSuite(t, SuiteConfig{Name: "math", Runner: r, Cases: []Case{
		{Name: "adds numbers", Fn: func(t *T) error {
			t.Check(1+1 == 2, "1+1 should be 2")
			return nil
		}},
	}})

	rep := s.Run(context.Background())

	assert.Equal(t, 1, rep.SuccessCount)
	assert.Equal(t, 0, rep.FailureCount)
	assert.Equal(t, []MessageType{MessageSuccess, MessageReport}, rec.types())

	msgs := rec.messages()
	assert.Equal(t, "adds numbers", msgs[0].AssertionText)
	assert.Equal(t, "math", msgs[0].Suite)
	assert.NotNil(t, msgs[0].TestFn)
	assert.NoError(t, msgs[0].Err)
	assert.Equal(t, 1, msgs[1].SuccessCount)
	assert.Equal(t, 0, msgs[1].FailureCount)
}

func TestSuiteRun_EmptySuiteReportsImmediately(t *testing.T) {
	r, rec := newTestRunner(t)
	s := newTestSuite(t, SuiteConfig{Name: "empty", Runner: r})

	rep := s.Run(context.Background())

	assert.Equal(t, 0, rep.Total())
	assert.Equal(t, []MessageType{MessageReport}, rec.types())
}

func TestSuiteRun_CountsMatchTestsForSynchronousSuites(t *testing.T) {
	r, rec := newTestRunner(t)
	b := NewSuiteBuilder("mixed", r)
	for i, pass := range []bool{true, false, true, true, false} {
		pass := pass
		b.Test(string(rune('a'+i))+" test", func(t *T) error {
			t.Check(pass, "expected pass")
			return nil
		})
	}
	s, err := b.Build()
	require.NoError(t, err)

	rep := s.Run(context.Background())

	assert.Equal(t, 3, rep.SuccessCount)
	assert.Equal(t, 2, rep.FailureCount)
	assert.Equal(t, 5, rep.Total())
	assert.False(t, rep.Passed())
	assert.Len(t, rec.messages(), 6)
}

func TestSuiteRun_HooksRunAroundEveryTest(t *testing.T) {
	r, _ := newTestRunner(t)
	var events []string

	s := newTestSuite(t, SuiteConfig{
		Name:   "hooks",
		Runner: r,
		SetUp: func(s *Suite) error {
			events = append(events, "setUp")
			return nil
		},
		TearDown: func(s *Suite) error {
			events = append(events, "tearDown")
			return nil
		},
		Cases: []Case{
			{Name: "passes", Fn: func(t *T) error {
				events = append(events, "passes")
				return nil
			}},
			{Name: "throws", Fn: func(t *T) error {
				events = append(events, "throws")
				panic("synchronous throw")
			}},
			{Name: "fails check", Fn: func(t *T) error {
				events = append(events, "fails check")
				t.Check(false, "nope")
				return nil
			}},
		},
	})

	s.Run(context.Background())

	assert.Equal(t, []string{
		"setUp", "passes", "tearDown",
		"setUp", "throws", "tearDown",
		"setUp", "fails check", "tearDown",
	}, events)
}

func TestSuiteRun_AsyncTestsAreSequential(t *testing.T) {
	r, rec := newTestRunner(t)

	var mu sync.Mutex
	var events []string
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	s := newTestSuite(t, SuiteConfig{
		Name:     "async",
		Runner:   r,
		TearDown: func(s *Suite) error { record("tearDown"); return nil },
		Cases: []Case{
			{Name: "async ok", Fn: func(t *T) error {
				record("start ok")
				t.Wait(WithTimeout(500 * time.Millisecond))
				time.AfterFunc(10*time.Millisecond, func() {
					record("resume ok")
					t.Resume()
				})
				return nil
			}},
			{Name: "async timeout", Fn: func(t *T) error {
				record("start timeout")
				t.Wait(WithTimeout(10*time.Millisecond), WithMessage("too slow"))
				return nil
			}},
			{Name: "after timeout", Fn: func(t *T) error {
				record("start after")
				return nil
			}},
		},
	})

	rep := s.Run(context.Background())

	assert.Equal(t, 2, rep.SuccessCount)
	assert.Equal(t, 1, rep.FailureCount)

	mu.Lock()
	assert.Equal(t, []string{
		"start ok", "resume ok", "tearDown",
		"start timeout", "tearDown",
		"start after", "tearDown",
	}, events)
	mu.Unlock()

	msgs := rec.messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, MessageSuccess, msgs[0].Type)
	assert.Equal(t, MessageFailure, msgs[1].Type)
	assert.Equal(t, "async timeout", msgs[1].AssertionText)
	assert.Equal(t, "too slow", msgs[1].Err.Error())
	assert.True(t, IsTimeout(msgs[1].Err))
	assert.Equal(t, MessageSuccess, msgs[2].Type)
	assert.Equal(t, MessageReport, msgs[3].Type)
}

func TestSuiteRun_TearDownRunsOnceAfterResume(t *testing.T) {
	r, _ := newTestRunner(t)
	tearDowns := 0
	s := newTestSuite(t, SuiteConfig{
		Name:     "resume",
		Runner:   r,
		TearDown: func(s *Suite) error { tearDowns++; return nil },
		Cases: []Case{{Name: "async ok", Fn: func(t *T) error {
			t.Wait(WithTimeout(50 * time.Millisecond))
			time.AfterFunc(5*time.Millisecond, func() { t.Resume() })
			return nil
		}}},
	})

	rep := s.Run(context.Background())

	assert.Equal(t, 1, rep.SuccessCount)
	assert.Equal(t, 1, tearDowns)
}

func TestSuiteRun_SetUpFailureSkipsBody(t *testing.T) {
	r, rec := newTestRunner(t)
	ran := false
	tearDowns := 0
	s := newTestSuite(t, SuiteConfig{
		Name:     "setup",
		Runner:   r,
		SetUp:    func(s *Suite) error { return errors.New("fixture missing") },
		TearDown: func(s *Suite) error { tearDowns++; return nil },
		Cases: []Case{{Name: "never runs", Fn: func(t *T) error {
			ran = true
			return nil
		}}},
	})

	rep := s.Run(context.Background())

	assert.False(t, ran)
	assert.Equal(t, 1, tearDowns)
	assert.Equal(t, 1, rep.FailureCount)
	msgs := rec.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ErrCodeSetUp, CodeOf(msgs[0].Err))
	assert.Contains(t, msgs[0].Err.Error(), "fixture missing")
}

func TestSuiteRun_TearDownPanicDoesNotChangeOutcome(t *testing.T) {
	r, _ := newTestRunner(t)
	s := newTestSuite(t, SuiteConfig{
		Name:     "teardown",
		Runner:   r,
		TearDown: func(s *Suite) error { panic("cleanup exploded") },
		Cases: []Case{
			{Name: "first", Fn: func(t *T) error { return nil }},
			{Name: "second", Fn: func(t *T) error { return nil }},
		},
	})

	rep := s.Run(context.Background())

	assert.Equal(t, 2, rep.SuccessCount)
	assert.Equal(t, 0, rep.FailureCount)
}

func TestSuiteRun_CancelledContext(t *testing.T) {
	r, rec := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	ran := false

	s := newTestSuite(t, SuiteConfig{
		Name:   "cancel",
		Runner: r,
		Cases: []Case{
			{Name: "hangs", Fn: func(t *T) error {
				t.Wait(WithTimeout(time.Minute))
				time.AfterFunc(5*time.Millisecond, cancel)
				return nil
			}},
			{Name: "skipped", Fn: func(t *T) error {
				ran = true
				return nil
			}},
		},
	})

	rep := s.Run(ctx)

	assert.False(t, ran)
	assert.Equal(t, 2, rep.FailureCount)
	msgs := rec.messages()
	require.Len(t, msgs, 3)
	assert.True(t, IsCancelled(msgs[0].Err))
	assert.True(t, IsCancelled(msgs[1].Err))
	assert.Equal(t, "skipped", msgs[1].AssertionText)
}

func TestSuiteRun_SharedRunnerAccumulates(t *testing.T) {
	r, rec := newTestRunner(t)
	pass := func(t *T) error { return nil }
	fail := func(t *T) error { t.Check(false, "no"); return nil }

	s1, err := NewSuiteBuilder("first", r).Test("one", pass).Test("two", fail).Build()
	require.NoError(t, err)
	s2, err := NewSuiteBuilder("second", r).Test("three", pass).Build()
	require.NoError(t, err)

	rep1 := s1.Run(context.Background())
	rep2 := s2.Run(context.Background())

	assert.Equal(t, Report{RunID: "run-test", SuccessCount: 1, FailureCount: 1}, rep1)
	assert.Equal(t, Report{RunID: "run-test", SuccessCount: 2, FailureCount: 1}, rep2)

	var reports []Message
	for _, m := range rec.messages() {
		if m.Type == MessageReport {
			reports = append(reports, m)
		}
	}
	require.Len(t, reports, 2)
	assert.Equal(t, 3, reports[1].SuccessCount+reports[1].FailureCount)
}

func TestSuiteBuilder_Config(t *testing.T) {
	r, _ := newTestRunner(t)
	hook := func(s *Suite) error { return nil }
	cfg := NewSuiteBuilder("built", r).
		SetUp(hook).
		TearDown(hook).
		Test("a test", func(t *T) error { return nil }).
		Config()

	assert.Equal(t, "built", cfg.Name)
	assert.Same(t, r, cfg.Runner)
	assert.NotNil(t, cfg.SetUp)
	assert.NotNil(t, cfg.TearDown)
	require.Len(t, cfg.Cases, 1)
	assert.Equal(t, "a test", cfg.Cases[0].Name)
}
