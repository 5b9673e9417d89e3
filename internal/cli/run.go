package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturekit/internal/config"
	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/report"
	"github.com/roach88/fixturekit/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Isolate    bool
	Timeout    time.Duration
	Filters    []string
	FailFast   bool
	OnlyFailed bool
	Output     string
	History    string
	HistoryDSN string
	NoHistory  bool
	Keep       int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the registered tests",
		Long: `Run every registered test (or those matching --filter) and write a report.

Each test runs setUp, its body, ledger verification and tearDown. A failing
assertion ends that test only. A crash (nil dereference, invalid memory
access) ends the whole run unless --isolate runs every test in its own
child process.

Results are stored in the history database so --only-failed can re-run
what failed last time.

Exit code is 0 when every test passed or was ignored, 1 otherwise.

Example:
  fixturekit run
  fixturekit run --isolate --timeout 5s --format junit --output results.json
  fixturekit run --filter 'usart_*/**' --fail-fast
  fixturekit run --only-failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Isolate, "isolate", false, "run each test in its own child process")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "per-test limit when isolated (0 disables)")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "doublestar pattern over suite/name (repeatable)")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first failing or crashing test")
	cmd.Flags().BoolVar(&opts.OnlyFailed, "only-failed", false, "re-run only the tests that did not pass in the last stored run")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "also write a json results file to this path")
	cmd.Flags().StringVar(&opts.History, "history", config.DefaultHistory, "SQLite results store")
	cmd.Flags().StringVar(&opts.HistoryDSN, "history-dsn", "", "MySQL results store DSN (overrides --history)")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not store this run")
	cmd.Flags().IntVar(&opts.Keep, "keep", config.DefaultKeep, "number of runs the results store retains (0 keeps all)")

	return cmd
}

// applyFlags layers explicitly set run flags over the resolved config.
func (o *RunOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if flagChanged(cmd, "isolate") {
		cfg.Isolate = o.Isolate
	}
	if flagChanged(cmd, "timeout") {
		cfg.Timeout = o.Timeout
	}
	if flagChanged(cmd, "filter") {
		cfg.Filters = o.Filters
	}
	if flagChanged(cmd, "fail-fast") {
		cfg.FailFast = o.FailFast
	}
	if flagChanged(cmd, "output") {
		cfg.Output = o.Output
	}
	if flagChanged(cmd, "history") {
		cfg.History = o.History
	}
	if flagChanged(cmd, "history-dsn") {
		cfg.HistoryDSN = o.HistoryDSN
	}
	if flagChanged(cmd, "keep") {
		cfg.Keep = o.Keep
	}
	if o.NoHistory {
		cfg.History, cfg.HistoryDSN = "", ""
	}
}

func runTests(opts *RunOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	opts.applyFlags(cmd, cfg)

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	if err := harness.ValidateFilters(cfg.Filters); err != nil {
		return WrapExitError(ExitCommandError, "invalid --filter", err)
	}
	if opts.OnlyFailed && !cfg.HistoryEnabled() {
		return NewExitError(ExitCommandError, "--only-failed needs a results store")
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.HistoryEnabled() {
		st, err = openStore(cfg, opts.IDs)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open results store", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing results store", "error", closeErr)
			}
		}()
	}

	runnerOpts := []harness.Option{
		harness.WithLogger(logger),
		harness.WithFilter(cfg.Filters...),
		harness.WithFailFast(cfg.FailFast),
	}
	if opts.Clock != nil {
		runnerOpts = append(runnerOpts, harness.WithClock(opts.Clock))
	}

	if opts.OnlyFailed {
		last, err := st.LastRun(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return WrapExitError(ExitCommandError, "--only-failed: no stored runs", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "--only-failed", err)
		}
		ids, err := st.FailedTests(ctx, last.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "--only-failed", err)
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No failed tests in run %s\n", last.ID)
			return nil
		}
		logger.Info("re-running failed tests", "run", last.ID, "tests", len(ids))
		runnerOpts = append(runnerOpts, harness.WithOnly(ids))
	}

	if cfg.Isolate {
		iso, err := harness.SelfIsolator(cfg.Timeout)
		if err != nil {
			return WrapExitError(ExitCommandError, "--isolate", err)
		}
		if cfg.Verbose {
			iso.Output = cmd.ErrOrStderr()
		}
		runnerOpts = append(runnerOpts, harness.WithIsolation(iso))
	}

	if isTerminal(cmd.ErrOrStderr()) && !cfg.Verbose {
		total := len(harness.NewRunner(runnerOpts...).Select(opts.Suites))
		runnerOpts = append(runnerOpts, harness.WithObserver(newProgress(cmd.ErrOrStderr(), total)))
	}

	rep := harness.NewRunner(runnerOpts...).Run(ctx, opts.Suites)
	rep.RunID = runID(opts.IDs)

	if st != nil {
		if err := saveRun(st, rep, cfg.Keep, logger); err != nil {
			return WrapExitError(ExitCommandError, "failed to store run", err)
		}
	}

	noColor := cfg.NoColor || !isTerminal(cmd.OutOrStdout())
	if err := report.Write(cmd.OutOrStdout(), format, rep, report.Options{Verbose: cfg.Verbose, NoColor: noColor}); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	if cfg.Output != "" {
		if err := writeResultsFile(cfg.Output, rep); err != nil {
			return WrapExitError(ExitCommandError, "failed to write results file", err)
		}
	}

	if !rep.OK() {
		s := rep.Summary()
		return NewExitError(ExitFailure, fmt.Sprintf(
			"%d failed, %d crashed, %d not run", s.Failed, s.Crashed, s.NotRun))
	}
	return nil
}

func runID(g store.IDGenerator) string {
	if g == nil {
		g = store.UUIDv7Generator{}
	}
	return g.Generate()
}

// saveRun stores the run on a fresh context so an interrupted run is
// still recorded, then prunes old runs.
func saveRun(st *store.Store, rep *harness.Report, keep int, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec, err := st.SaveRun(ctx, rep)
	if err != nil {
		return err
	}
	logger.Debug("run stored", "run", rec.ID, "seq", rec.Seq, "digest", rec.Digest)

	if keep > 0 {
		n, err := st.Prune(ctx, keep)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Debug("pruned old runs", "removed", n, "keep", keep)
		}
	}
	return nil
}

// openStore opens the MySQL store when a DSN is configured, otherwise the
// SQLite file (creating its directory).
func openStore(cfg *config.Config, ids store.IDGenerator) (*store.Store, error) {
	var opts []store.Option
	if ids != nil {
		opts = append(opts, store.WithIDGenerator(ids))
	}
	if cfg.HistoryDSN != "" {
		return store.OpenMySQL(cfg.HistoryDSN, opts...)
	}
	if dir := filepath.Dir(cfg.History); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return store.Open(cfg.History, opts...)
}

func writeResultsFile(path string, rep *harness.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, report.NewDocument(rep)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
