package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturekit/internal/harness"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Filters []string
}

// CaseInfo is one registered test as printed by list.
type CaseInfo struct {
	ID    string `json:"id"`
	Suite string `json:"suite"`
	Name  string `json:"name"`
	File  string `json:"file,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tests",
		Long: `List every registered test as suite/name, in run order.

Example:
  fixturekit list
  fixturekit list --filter 'temperature_*/*' --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "doublestar pattern over suite/name (repeatable)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Config.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Config.Verbose,
	}

	filters := opts.Config.Filters
	if flagChanged(cmd, "filter") {
		filters = opts.Filters
	}
	if err := harness.ValidateFilters(filters); err != nil {
		_ = formatter.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --filter", err)
	}

	cases := harness.NewRunner(harness.WithFilter(filters...)).Select(opts.Suites)
	infos := make([]CaseInfo, len(cases))
	for i, tc := range cases {
		infos[i] = CaseInfo{ID: tc.ID(), Suite: tc.Suite, Name: tc.Name, File: tc.File}
	}
	formatter.VerboseLog("%d test(s) selected", len(infos))

	if formatter.JSON() {
		return formatter.Success(infos)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\n", info.ID, info.File)
	}
	return w.Flush()
}
