package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/testrig/internal/harness"
	"github.com/roach88/testrig/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filter         string        // suite filter (glob pattern)
	Timeout        time.Duration // default Wait timeout
	TimeoutMessage string        // default Wait timeout message
	Quiet          bool          // disable console listener
	Durations      bool          // show test durations
	StorePath      string        // run history database
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run registered suites",
		Long: `Run the registered suites in registration order.

Every outcome is printed as it happens, followed by a report line after
each suite with the totals so far.

Exit codes:
  0 - All tests passed
  1 - One or more tests failed
  2 - Command error (bad filter, suite failed to build, etc.)

Examples:
  testrig run
  testrig run --filter "math*"
  testrig run --timeout 250ms --store .testrig/history.db
  testrig run --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuites(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "default Wait timeout (default from config, 1s)")
	cmd.Flags().StringVar(&opts.TimeoutMessage, "timeout-message", "", "default Wait timeout message")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not print test outcomes")
	cmd.Flags().BoolVar(&opts.Durations, "durations", false, "print test durations")
	cmd.Flags().StringVar(&opts.StorePath, "store", "", "record run history in this SQLite database")

	return cmd
}

// mergeFlags applies run flags over the loaded config.
func (o *RunOptions) mergeFlags(cmd *cobra.Command) {
	cfg := &o.Config
	if cmd.Flags().Changed("filter") {
		cfg.Filter = o.Filter
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	if cmd.Flags().Changed("timeout-message") {
		cfg.TimeoutMessage = o.TimeoutMessage
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = o.Quiet
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = o.StorePath
	}
}

func runSuites(cmd *cobra.Command, opts *RunOptions) error {
	opts.mergeFlags(cmd)
	if err := opts.Config.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}
	cfg := opts.Config

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	hopts := harness.Options{
		Filter:      cfg.Filter,
		WaitTimeout: cfg.Timeout,
		WaitMessage: cfg.TimeoutMessage,
		Durations:   opts.Durations,
		Logger:      logger,
	}
	// JSON output is a single document; the transcript would corrupt it.
	if !cfg.Quiet && opts.Format != "json" {
		hopts.Output = cmd.OutOrStdout()
	}

	if cfg.Store != "" {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history store", err)
		}
		defer st.Close()
		hopts.Store = st
		formatter.VerboseLog("Recording history in %s", cfg.Store)
	}

	result, err := harness.Run(cmd.Context(), opts.Registry, hopts)
	if err != nil {
		if errors.Is(err, harness.ErrNoSuites) {
			return WrapExitError(ExitCommandError, "nothing to run", err)
		}
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	if opts.Format == "json" {
		status := "ok"
		if !result.Passed() {
			status = "error"
		}
		if err := formatter.Encode(CLIResponse{Status: status, Data: result, RunID: result.RunID}); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	} else {
		formatter.VerboseLog("Run %s: %d passed, %d failed", result.RunID, result.SuccessCount, result.FailureCount)
	}

	if !result.Passed() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d tests failed", result.FailureCount, result.Total()))
	}
	return nil
}
