package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/roach88/fixturekit/internal/harness"
)

// WriteIDE writes compiler-style diagnostics ("file:line: error: ...") that
// editors and IDEs turn into clickable problems. Passing tests are omitted;
// the summary and verdict follow as in text output, without colour.
func WriteIDE(w io.Writer, r *harness.Report) error {
	bw := bufio.NewWriter(w)

	for _, res := range r.Results {
		id := res.ID()
		switch res.Outcome {
		case harness.OutcomeFail:
			failures := res.Failures()
			if len(failures) == 0 {
				diagnostic(bw, res.File, res.Line, "error", id, res.Message)
			}
			for _, f := range failures {
				diagnostic(bw, f.File, f.Line, "error", id, f.Message)
			}
		case harness.OutcomeCrashed:
			diagnostic(bw, res.File, res.Line, "error", id, "crashed"+suffix(res.Message))
		case harness.OutcomeIgnored:
			diagnostic(bw, res.File, 0, "warning", id, "ignored"+suffix(res.Message))
		}
	}
	for _, id := range r.NotRun {
		diagnostic(bw, "", 0, "note", id, "not run")
	}

	writeSummary(bw, newPalette(true), r)
	return bw.Flush()
}

func diagnostic(w io.Writer, file string, line int, severity, id, msg string) {
	loc := location(file, line)
	if loc == "" {
		loc = "fixturekit:"
	}
	fmt.Fprintf(w, "%s %s: %s%s\n", loc, severity, id, suffix(msg))
}
