// Package harness runs registered suites against a shared Runner.
//
// A host program registers suite factories by name, then hands the
// Registry to Run (directly, or through the CLI). Run builds one Runner
// per invocation, attaches the configured listeners and executes the
// matching suites in registration order:
//
//	reg := harness.NewRegistry()
//	reg.MustRegister("math", func(r *engine.Runner) (*engine.Suite, error) {
//	    return engine.NewSuiteBuilder("math", r).
//	        Test("adds numbers", addsNumbers).
//	        Build()
//	})
//
//	result, err := harness.Run(ctx, reg, harness.Options{Output: os.Stdout})
//
// Because the Runner is shared, it reports after every suite with the
// totals so far; the last report carries the totals for the whole run.
//
// # Filtering
//
// Options.Filter is a path.Match glob over suite names. Names are compared
// in Unicode NFC form, so a filter typed with a precomposed "é" matches a
// suite registered with a combining accent.
//
// # Golden Transcripts
//
// RunWithGolden captures the console transcript of a run and compares it
// against testdata/golden/{name}.golden. To regenerate golden files, run:
//
//	go test ./... -update
package harness
