package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roach88/testrig/internal/config"
	"github.com/roach88/testrig/internal/harness"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded in PersistentPreRunE: the file at ConfigPath when
	// set, otherwise the defaults.
	Config config.Config

	// Registry holds the suites the host binary registered.
	Registry *harness.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the testrig CLI.
func NewRootCommand(reg *harness.Registry) *cobra.Command {
	if reg == nil {
		reg = harness.NewRegistry()
	}
	opts := &RootOptions{Registry: reg, Config: config.Default()}

	cmd := &cobra.Command{
		Use:   "testrig",
		Short: "testrig - a minimal unit-test runner",
		Long: `Run registered test suites, sequentially, with asynchronous tests
suspended until they resume, fail or time out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadRootConfig(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// loadRootConfig reads the config file and applies the global flag
// overrides.
func loadRootConfig(cmd *cobra.Command, opts *RootOptions) error {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("format") {
		cfg.Format = opts.Format
	} else {
		opts.Format = cfg.Format
	}
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	opts.Config = cfg
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the diagnostic logger: debug level with --verbose,
// otherwise the configured log_level. Logs always go to w (stderr) so JSON
// output stays clean.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(opts.Config.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the CLI against reg with os.Args and returns the process
// exit code. An interrupt cancels the run context, so a suspended test
// fails with CANCELLED instead of hanging.
func Execute(reg *harness.Registry) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCommand(reg)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
