package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	History    string
	HistoryDSN string
	Limit      int
	Prune      int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [suite/name]",
		Short: "Show stored runs, or one test across runs",
		Long: `Show the runs kept in the results store, newest first. With a test ID,
show that test's outcome in each stored run instead.

Example:
  fixturekit history
  fixturekit history calc/AddThenSubtract --limit 5
  fixturekit history --prune 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "SQLite results store (default from config)")
	cmd.Flags().StringVar(&opts.HistoryDSN, "history-dsn", "", "MySQL results store DSN")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum rows to show (0 shows all)")
	cmd.Flags().IntVar(&opts.Prune, "prune", -1, "delete all but the newest N runs before listing")

	return cmd
}

// RunSummary is one stored run as printed by history.
type RunSummary struct {
	ID       string          `json:"id"`
	Seq      int64           `json:"seq"`
	Started  string          `json:"started"`
	Finished string          `json:"finished"`
	Summary  harness.Summary `json:"summary"`
	OK       bool            `json:"ok"`
	Aborted  string          `json:"aborted,omitempty"`
}

// CaseRun is one test's result in one stored run.
type CaseRun struct {
	RunID      string          `json:"run_id"`
	Outcome    harness.Outcome `json:"outcome"`
	Message    string          `json:"message,omitempty"`
	DurationNS int64           `json:"duration_ns"`
}

// openHistory resolves the store from flags over config.
func openHistory(opts *RootOptions, cmd *cobra.Command, history, dsn string) (*store.Store, error) {
	cfg := *opts.Config
	if flagChanged(cmd, "history") {
		cfg.History = history
	}
	if flagChanged(cmd, "history-dsn") {
		cfg.HistoryDSN = dsn
	}
	if !cfg.HistoryEnabled() {
		return nil, errors.New("no results store configured")
	}
	return openStore(&cfg, nil)
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Config.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Config.Verbose,
	}

	st, err := openHistory(opts.RootOptions, cmd, opts.History, opts.HistoryDSN)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open results store", err)
	}
	defer st.Close()
	ctx := cmd.Context()

	if opts.Prune >= 0 {
		n, err := st.Prune(ctx, opts.Prune)
		if err != nil {
			return WrapExitError(ExitCommandError, "prune failed", err)
		}
		formatter.VerboseLog("pruned %d run(s)", n)
	}

	if len(args) == 1 {
		return showCaseHistory(formatter, st, cmd, args[0], opts.Limit)
	}

	runs, err := st.Runs(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}
	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = RunSummary{
			ID: r.ID, Seq: r.Seq, Started: r.Started, Finished: r.Finished,
			Summary: r.Summary, OK: r.OK(), Aborted: r.Aborted,
		}
	}

	if formatter.JSON() {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored runs")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tRUN\tSTARTED\tTESTS\tPASS\tFAIL\tIGNORED\tCRASHED\tNOT RUN\tRESULT")
	for _, s := range summaries {
		result := "OK"
		if !s.OK {
			result = "FAIL"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Seq, s.ID, s.Started, s.Summary.Total, s.Summary.Passed, s.Summary.Failed,
			s.Summary.Ignored, s.Summary.Crashed, s.Summary.NotRun, result)
	}
	return w.Flush()
}

func showCaseHistory(formatter *OutputFormatter, st *store.Store, cmd *cobra.Command, id string, limit int) error {
	results, err := st.CaseHistory(cmd.Context(), id, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}
	runs := make([]CaseRun, len(results))
	for i, r := range results {
		runs[i] = CaseRun{RunID: r.RunID, Outcome: r.Outcome, Message: r.Message, DurationNS: r.Duration}
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("no stored results for %s", id), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("no stored results for %s", id))
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tOUTCOME\tDURATION\tMESSAGE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.RunID, r.Outcome, time.Duration(r.DurationNS), r.Message)
	}
	return w.Flush()
}
