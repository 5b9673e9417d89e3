package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/report"
	"github.com/roach88/fixturekit/internal/store"
)

// FailuresOptions holds flags for the failures command.
type FailuresOptions struct {
	*RootOptions
	History    string
	HistoryDSN string
	Plain      bool
}

// NewFailuresCommand creates the failures command.
func NewFailuresCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FailuresOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "failures [run-id]",
		Short: "Browse the failures of a stored run",
		Long: `Browse every test that did not pass in a stored run (the last run by
default). On a terminal this opens an interactive viewer: ↑↓ to move,
→ or Enter to read the details, ← to go back, q or Ctrl+C to quit.

With --plain, or when stdout is not a terminal, failures are printed.

Example:
  fixturekit failures
  fixturekit failures 0192f1c4-7b7e-7c1a-9d1e-0c5b8a9f3e21 --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFailures(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "SQLite results store (default from config)")
	cmd.Flags().StringVar(&opts.HistoryDSN, "history-dsn", "", "MySQL results store DSN")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "print failures instead of opening the viewer")

	return cmd
}

func runFailures(opts *FailuresOptions, args []string, cmd *cobra.Command) error {
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

	var runID string
	if len(args) == 1 {
		runID = args[0]
	} else {
		last, err := st.LastRun(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				_ = formatter.Error(ErrCodeNotFound, "no stored runs", nil)
			}
			return WrapExitError(ExitCommandError, "failed to find last run", err)
		}
		runID = last.ID
	}

	doc, err := st.Document(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run %s not found", runID), nil)
		}
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}
	failures := collectFailures(doc)

	if formatter.JSON() {
		return formatter.Success(failures)
	}
	if len(failures) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No failures in run %s\n", doc.RunID)
		return nil
	}
	if opts.Plain || !isTerminal(cmd.OutOrStdout()) {
		writeFailures(cmd.OutOrStdout(), doc.RunID, failures)
		return nil
	}
	return browseFailures(doc.RunID, failures)
}

// FailedTest is one non-passing entry of a stored run.
type FailedTest struct {
	ID       string           `json:"id"`
	File     string           `json:"file,omitempty"`
	Line     int              `json:"line,omitempty"`
	Outcome  harness.Outcome  `json:"outcome"`
	Message  string           `json:"message,omitempty"`
	Failures []report.Failure `json:"failures,omitempty"`
}

// collectFailures returns the FAIL and CRASHED entries, then the not-run
// cases, in report order.
func collectFailures(doc *report.Document) []FailedTest {
	var out []FailedTest
	for _, e := range doc.Tests {
		if e.Outcome.OK() {
			continue
		}
		out = append(out, FailedTest{
			ID: e.ID(), File: e.File, Line: e.Line,
			Outcome: e.Outcome, Message: e.Message, Failures: e.Failures,
		})
	}
	for _, id := range doc.NotRun {
		out = append(out, FailedTest{ID: id, Outcome: store.OutcomeNotRun, Message: doc.Aborted})
	}
	return out
}

func writeFailures(w io.Writer, runID string, failures []FailedTest) {
	fmt.Fprintf(w, "Run %s: %d test(s) did not pass\n", runID, len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "\n%s %s\n", f.Outcome, f.ID)
		fmt.Fprint(w, indent(failureDetails(f, false)))
	}
}

func indent(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// failureDetails renders one failed test. With tags, the text carries
// tview colour tags and user text is escaped.
func failureDetails(f FailedTest, tags bool) string {
	esc := func(s string) string { return s }
	label := func(s string) string { return s }
	if tags {
		esc = tview.Escape
		label = func(s string) string { return "[yellow]" + s + "[white]" }
	}

	var b strings.Builder
	if f.File != "" {
		loc := f.File
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		fmt.Fprintf(&b, "%s %s\n", label("Location:"), esc(loc))
	}
	if len(f.Failures) == 0 && f.Message != "" {
		fmt.Fprintf(&b, "%s %s\n", label("Message:"), esc(f.Message))
	}
	for i, fl := range f.Failures {
		if i > 0 {
			b.WriteString("\n")
		}
		loc := fl.File
		if fl.Line > 0 {
			loc = fmt.Sprintf("%s:%d", fl.File, fl.Line)
		}
		fmt.Fprintf(&b, "%s %s %s\n", label("Failure:"), esc("["+string(fl.Phase)+"]"), esc(loc))
		fmt.Fprintf(&b, "  %s\n", esc(fl.Message))
		if fl.Expected != "" || fl.Actual != "" {
			fmt.Fprintf(&b, "  %s %s\n", label("Expected:"), esc(fl.Expected))
			fmt.Fprintf(&b, "  %s   %s\n", label("Actual:"), esc(fl.Actual))
		}
		if fl.Diff != "" {
			for _, line := range strings.Split(strings.TrimRight(fl.Diff, "\n"), "\n") {
				fmt.Fprintf(&b, "  %s\n", esc(line))
			}
		}
	}
	return b.String()
}

// browseFailures opens the interactive viewer.
func browseFailures(runID string, failures []FailedTest) error {
	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, f := range failures {
		list.AddItem(fmt.Sprintf("[yellow]%d.[white] %s %s", i+1, outcomeTag(f.Outcome), tview.Escape(f.ID)), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	detailsView.SetBorder(true)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" Run %s: %d failure(s) | ↑↓ navigate, → details, ← back, q quit ",
			tview.Escape(runID), len(failures)))

	updateDetails := func(index int) {
		if index < 0 || index >= len(failures) {
			return
		}
		f := failures[index]
		detailsView.SetTitle(" " + f.ID + " ")
		detailsView.SetText(failureDetails(f, true))
		detailsView.ScrollToBeginning()
	}
	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		updateDetails(index)
	})
	updateDetails(0)

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(detailsView, 0, 2, false)
	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func outcomeTag(o harness.Outcome) string {
	switch o {
	case harness.OutcomeFail:
		return "[red]FAIL[white]"
	case harness.OutcomeCrashed:
		return "[fuchsia]CRASHED[white]"
	}
	return "[gray]" + string(o) + "[white]"
}
