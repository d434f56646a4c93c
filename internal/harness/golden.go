package harness

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/testrig/internal/testutil"
)

// goldenRunID stamps golden runs so transcripts never depend on a fresh
// UUID.
const goldenRunID = "golden-run"

// RunWithGolden runs the registry and compares the console transcript
// against testdata/golden/{name}.golden.
//
// opts.Output and opts.Durations are overridden: the transcript is captured
// in memory without durations so it is byte-stable. opts.IDGenerator
// defaults to a fixed ID.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run result, or the error from Run. Test failure (via goldie)
// occurs if the transcript doesn't match the golden file.
func RunWithGolden(t *testing.T, reg *Registry, name string, opts Options) (*Result, error) {
	t.Helper()

	var buf bytes.Buffer
	opts.Output = &buf
	opts.Durations = false
	if opts.IDGenerator == nil {
		opts.IDGenerator = testutil.NewFixedIDGenerator(goldenRunID)
	}

	result, err := Run(context.Background(), reg, opts)
	if err != nil {
		return nil, err
	}

	AssertTranscript(t, name, buf.Bytes())
	return result, nil
}

// AssertTranscript compares an already captured transcript against
// testdata/golden/{name}.golden.
func AssertTranscript(t *testing.T, name string, transcript []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, transcript)
}
