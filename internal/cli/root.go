package cli

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturekit/internal/config"
	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/report"
	"github.com/roach88/fixturekit/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // one of report.Formats
	NoColor bool
	Dir     string // project directory holding fixturekit.yaml and .env

	// Config is resolved before any subcommand runs: defaults, config file,
	// environment, then any global flag set on the command line.
	Config *config.Config

	// Suites are the registered tests the binary was built with.
	Suites []harness.Suite

	// LookupEnv overrides environment lookup (for testing).
	LookupEnv func(string) (string, bool)

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDs store.IDGenerator

	// Clock overrides the wall clock used for run and test timings (for testing).
	Clock harness.Clock
}

// NewRootCommand creates the root command for the fixturekit CLI.
func NewRootCommand(suites []harness.Suite) *cobra.Command {
	return newRootCommand(&RootOptions{Suites: suites})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixturekit",
		Short: "fixturekit - mock-based unit test runner",
		Long: `Run registered unit tests through a setUp/body/tearDown lifecycle,
verify faked calls against an ordered expectation ledger, and report each
test as PASS, FAIL, IGNORED or CRASHED.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolveConfig(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (text|json|yaml|junit|teamcity|ide)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured output")
	cmd.PersistentFlags().StringVarP(&opts.Dir, "dir", "C", ".", "project directory to read fixturekit.yaml and .env from")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewFailuresCommand(opts))

	return cmd
}

func (o *RootOptions) resolveConfig(cmd *cobra.Command) error {
	loader := &config.Loader{Dir: o.Dir, LookupEnv: o.LookupEnv}
	cfg, err := loader.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if flagChanged(cmd, "format") {
		cfg.Format = o.Format
	}
	if flagChanged(cmd, "verbose") {
		cfg.Verbose = o.Verbose
	}
	if flagChanged(cmd, "no-color") {
		cfg.NoColor = o.NoColor
	}

	if cfg.History != "" && !filepath.IsAbs(cfg.History) {
		cfg.History = filepath.Join(o.Dir, cfg.History)
	}

	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return WrapExitError(ExitCommandError, "invalid --format", err)
	}
	o.Config = cfg
	return nil
}

// flagChanged reports whether a local or inherited flag was set explicitly.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// newLogger builds the slog logger for a command: text to w at Info, or
// Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
