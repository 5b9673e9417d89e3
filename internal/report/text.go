package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/fixturekit/internal/harness"
)

const separator = "-----------------------"

type palette struct {
	pass, fail, ignore, crash, dim *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		ignore: color.New(color.FgYellow),
		crash:  color.New(color.FgMagenta, color.Bold),
		dim:    color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.pass, p.fail, p.ignore, p.crash, p.dim} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{p.pass, p.fail, p.ignore, p.crash, p.dim} {
			c.EnableColor()
		}
	}
	return p
}

// WriteText writes one line per test in the classic
// "file:line:test:OUTCOME: message" layout, then the summary and verdict.
func WriteText(w io.Writer, r *harness.Report, opts Options) error {
	bw := bufio.NewWriter(w)
	p := newPalette(opts.NoColor)

	for _, res := range r.Results {
		writeResult(bw, p, res, opts.Verbose)
	}
	for _, id := range r.NotRun {
		fmt.Fprintf(bw, "%s:%s\n", id, p.dim.Sprint("NOT RUN"))
	}

	writeSummary(bw, p, r)
	return bw.Flush()
}

func writeSummary(w io.Writer, p palette, r *harness.Report) {
	s := r.Summary()
	fmt.Fprintf(w, "\n%s\n", separator)
	fmt.Fprintf(w, "%d Tests %d Failures %d Ignored %d Crashed %d Not Run\n",
		s.Total, s.Failed, s.Ignored, s.Crashed, s.NotRun)
	if r.Aborted != "" {
		fmt.Fprintf(w, "Run aborted: %s\n", r.Aborted)
	}
	if r.OK() {
		fmt.Fprintln(w, p.pass.Sprint("OK"))
	} else {
		fmt.Fprintln(w, p.fail.Sprint("FAIL"))
	}
}

func writeResult(w io.Writer, p palette, res harness.TestResult, verbose bool) {
	id := res.ID()
	switch res.Outcome {
	case harness.OutcomePass:
		fmt.Fprintf(w, "%s%s:%s\n", location(res.File, 0), id, p.pass.Sprint("PASS"))
	case harness.OutcomeIgnored:
		fmt.Fprintf(w, "%s%s:%s%s\n", location(res.File, 0), id, p.ignore.Sprint("IGNORE"), suffix(res.Message))
	case harness.OutcomeCrashed:
		fmt.Fprintf(w, "%s%s:%s%s\n", location(res.File, res.Line), id, p.crash.Sprint("CRASHED"), suffix(res.Message))
		if verbose && res.Stack != "" {
			writeIndented(w, p, res.Stack)
		}
	case harness.OutcomeFail:
		failures := res.Failures()
		if len(failures) == 0 {
			fmt.Fprintf(w, "%s%s:%s%s\n", location(res.File, res.Line), id, p.fail.Sprint("FAIL"), suffix(res.Message))
			return
		}
		for _, f := range failures {
			fmt.Fprintf(w, "%s%s:%s%s\n", location(f.File, f.Line), id, p.fail.Sprint("FAIL"), suffix(f.Message))
			if !verbose {
				continue
			}
			if f.Expected != "" || f.Actual != "" {
				writeIndented(w, p, "Expected: "+f.Expected+"\nActual:   "+f.Actual)
			}
			if f.Diff != "" {
				writeIndented(w, p, f.Diff)
			}
		}
	}
}

func location(file string, line int) string {
	switch {
	case file == "":
		return ""
	case line > 0:
		return file + ":" + strconv.Itoa(line) + ":"
	}
	return file + ":"
}

func suffix(msg string) string {
	if msg == "" {
		return ""
	}
	return ": " + msg
}

func writeIndented(w io.Writer, p palette, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", p.dim.Sprint(line))
	}
}
