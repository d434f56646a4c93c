package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filter string
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Suites []string `json:"suites"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered suites",
		Long: `List the registered suites in the order run executes them.

Examples:
  testrig list
  testrig list --filter "math*" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSuites(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")

	return cmd
}

func listSuites(cmd *cobra.Command, opts *ListOptions) error {
	filter := opts.Config.Filter
	if cmd.Flags().Changed("filter") {
		filter = opts.Filter
	}

	entries, err := opts.Registry.Match(filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	result := ListResult{Suites: make([]string, 0, len(entries))}
	for _, e := range entries {
		result.Suites = append(result.Suites, e.Name)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Suites) == 0 {
		fmt.Fprintln(w, "No suites registered.")
		return nil
	}
	for _, name := range result.Suites {
		fmt.Fprintln(w, name)
	}
	return nil
}
