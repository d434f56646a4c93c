package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/testrig/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	StorePath string
	Limit     int
	Prune     time.Duration
}

// HistoryEntry is one run in the history command's JSON payload.
type HistoryEntry struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	Reports      int       `json:"reports"`
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Pruned int64          `json:"pruned,omitempty"`
	Runs   []HistoryEntry `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show runs recorded with run --store, newest first.

With --prune, runs started longer ago than the given age are deleted
before listing.

Examples:
  testrig history --store .testrig/history.db
  testrig history --store .testrig/history.db --limit 5 --format json
  testrig history --store .testrig/history.db --prune 720h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.StorePath, "store", "", "path to the history database (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "maximum number of runs to show (0 = all)")
	cmd.Flags().DurationVar(&opts.Prune, "prune", 0, "delete runs started longer ago than this age before listing")

	return cmd
}

func showHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	path := opts.Config.Store
	if cmd.Flags().Changed("store") {
		path = opts.StorePath
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no history store: pass --store or set store in the config file")
	}
	if opts.Prune < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --prune %s: age must be positive", opts.Prune))
	}
	// Open would create an empty database; a missing file is a user error.
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("history store not found: %s", path), err)
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history store", err)
	}
	defer st.Close()

	var pruned int64
	if opts.Prune > 0 {
		pruned, err = st.DeleteRunsBefore(cmd.Context(), time.Now().Add(-opts.Prune))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to prune history", err)
		}
	}

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	result := HistoryResult{Pruned: pruned, Runs: make([]HistoryEntry, 0, len(runs))}
	for _, r := range runs {
		result.Runs = append(result.Runs, HistoryEntry{
			RunID:        r.ID,
			StartedAt:    r.StartedAt,
			UpdatedAt:    r.UpdatedAt,
			SuccessCount: r.SuccessCount,
			FailureCount: r.FailureCount,
			Reports:      r.Reports,
		})
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if opts.Prune > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Pruned %d run(s) older than %s.\n", pruned, opts.Prune)
	}

	w := cmd.OutOrStdout()
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSUCCESS\tFAILURE")
	for _, r := range result.Runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.RunID, r.StartedAt.Format(time.RFC3339), r.SuccessCount, r.FailureCount)
	}
	return tw.Flush()
}
