package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/fixturekit/internal/harness"
)

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`

	duration time.Duration
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	File      string        `xml:"file,attr,omitempty"`
	Time      string        `xml:"time,attr"`
	Failure   *junitProblem `xml:"failure,omitempty"`
	Error     *junitProblem `xml:"error,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitProblem struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// WriteJUnit writes the report as JUnit XML, one <testsuite> per suite in
// order of first appearance. FAIL maps to <failure>, CRASHED to <error>,
// IGNORED and not-run cases to <skipped>.
func WriteJUnit(w io.Writer, r *harness.Report) error {
	root := junitTestSuites{
		Name: "fixturekit",
		Time: seconds(r.Finished.Sub(r.Started)),
	}
	index := map[string]int{}
	suite := func(name string) *junitTestSuite {
		i, ok := index[name]
		if !ok {
			i = len(root.Suites)
			index[name] = i
			root.Suites = append(root.Suites, junitTestSuite{Name: name})
		}
		return &root.Suites[i]
	}

	for _, res := range r.Results {
		s := suite(res.Suite)
		tc := junitTestCase{
			Name:      res.Name,
			Classname: res.Suite,
			File:      res.File,
			Time:      seconds(res.Duration),
		}
		switch res.Outcome {
		case harness.OutcomeFail:
			tc.Failure = &junitProblem{Message: res.Message, Type: string(res.Outcome), Body: failureBody(res)}
			s.Failures++
		case harness.OutcomeCrashed:
			tc.Error = &junitProblem{Message: res.Message, Type: string(res.Outcome), Body: res.Stack}
			s.Errors++
		case harness.OutcomeIgnored:
			tc.Skipped = &junitSkipped{Message: res.Message}
			s.Skipped++
		}
		s.Tests++
		s.duration += res.Duration
		s.Cases = append(s.Cases, tc)
	}
	for _, id := range r.NotRun {
		suiteName, name, _ := strings.Cut(id, "/")
		s := suite(suiteName)
		s.Cases = append(s.Cases, junitTestCase{
			Name:      name,
			Classname: suiteName,
			Time:      seconds(0),
			Skipped:   &junitSkipped{Message: "not run"},
		})
		s.Tests++
		s.Skipped++
	}

	for i := range root.Suites {
		s := &root.Suites[i]
		s.Time = seconds(s.duration)
		root.Tests += s.Tests
		root.Failures += s.Failures
		root.Errors += s.Errors
		root.Skipped += s.Skipped
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal junit report: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func failureBody(res harness.TestResult) string {
	failures := res.Failures()
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, location(f.File, f.Line)+" "+f.Message)
	}
	return strings.Join(lines, "\n")
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
