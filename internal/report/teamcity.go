package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/fixturekit/internal/harness"
)

var teamcityEscaper = strings.NewReplacer(
	"|", "||",
	"'", "|'",
	"\n", "|n",
	"\r", "|r",
	"[", "|[",
	"]", "|]",
)

// WriteTeamCity writes the report as TeamCity service messages. Each suite
// is a test suite with its own flowId; FAIL and CRASHED map to testFailed,
// IGNORED and not-run cases to testIgnored.
func WriteTeamCity(w io.Writer, r *harness.Report) error {
	bw := bufio.NewWriter(w)
	tc := &teamcityWriter{w: bw, flows: map[string]int{}}

	for _, res := range r.Results {
		tc.enter(res.Suite)
		id := res.ID()
		switch res.Outcome {
		case harness.OutcomeIgnored:
			tc.message("testIgnored", "name", id, "message", res.Message)
			continue
		}
		tc.message("testStarted", "name", id)
		switch res.Outcome {
		case harness.OutcomeFail:
			attrs := []string{"name", id, "message", res.Message, "details", failureBody(res)}
			if failures := res.Failures(); len(failures) == 1 && (failures[0].Expected != "" || failures[0].Actual != "") {
				attrs = append(attrs, "type", "comparisonFailure",
					"expected", failures[0].Expected, "actual", failures[0].Actual)
			}
			tc.message("testFailed", attrs...)
		case harness.OutcomeCrashed:
			tc.message("testFailed", "name", id, "message", "CRASHED"+suffix(res.Message), "details", res.Stack)
		}
		tc.message("testFinished", "name", id, "duration", strconv.FormatInt(res.Duration.Milliseconds(), 10))
	}
	for _, id := range r.NotRun {
		suite, _, _ := strings.Cut(id, "/")
		tc.enter(suite)
		tc.message("testIgnored", "name", id, "message", "not run")
	}
	tc.enter("")

	if r.Aborted != "" {
		tc.message("message", "text", "run aborted: "+r.Aborted, "status", "ERROR")
	}
	return bw.Flush()
}

type teamcityWriter struct {
	w     io.Writer
	suite string
	flow  int
	flows map[string]int
}

// enter closes the open suite block, if any, and opens one for suite.
// An empty suite only closes.
func (t *teamcityWriter) enter(suite string) {
	if suite == t.suite && t.flow != 0 {
		return
	}
	if t.flow != 0 {
		t.message("testSuiteFinished", "name", t.suite)
		t.flow = 0
	}
	t.suite = suite
	if suite == "" {
		return
	}
	flow, ok := t.flows[suite]
	if !ok {
		flow = len(t.flows) + 1
		t.flows[suite] = flow
	}
	t.flow = flow
	t.message("testSuiteStarted", "name", suite)
}

// message writes one service message. Attributes with empty values are
// dropped, except name.
func (t *teamcityWriter) message(kind string, attrs ...string) {
	var b strings.Builder
	b.WriteString("##teamcity[")
	b.WriteString(kind)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" && attrs[i] != "name" {
			continue
		}
		fmt.Fprintf(&b, " %s='%s'", attrs[i], teamcityEscaper.Replace(attrs[i+1]))
	}
	if t.flow != 0 {
		fmt.Fprintf(&b, " flowId='%d'", t.flow)
	}
	b.WriteString("]\n")
	_, _ = io.WriteString(t.w, b.String())
}
