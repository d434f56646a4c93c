// Package testrig is a minimal unit-test execution engine.
//
// Tests are named functions that check conditions through their *T. A test
// that needs to wait for asynchronous work calls Wait, returns, and is
// later decided by Resume, a failed check, its timeout or cancellation:
//
//	runner := testrig.NewRunner(true)
//	suite, err := testrig.NewSuiteBuilder("timers", runner).
//	    Test("fires later", func(t *testrig.T) error {
//	        s := t.Wait(testrig.WithTimeout(100 * time.Millisecond))
//	        time.AfterFunc(10*time.Millisecond, func() { s.Resume() })
//	        return nil
//	    }).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	suite.Run(context.Background())
//
// Suites run their tests strictly one at a time. Every outcome goes to the
// Runner, which counts it and notifies its listeners; the default listener
// prints one line per outcome and a report line per suite.
//
// Host binaries register suite factories in a Registry and hand it to
// Main, which provides the run, list and history commands.
package testrig
