package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/roach88/fixturekit/internal/harness"
)

// Document is the serialized form of a run, shared by the json and yaml
// writers and read back by Parse.
type Document struct {
	RunID    string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Started  string          `json:"started" yaml:"started"`
	Finished string          `json:"finished" yaml:"finished"`
	Summary  harness.Summary `json:"summary" yaml:"summary"`
	Tests    []Entry         `json:"tests" yaml:"tests"`
	NotRun   []string        `json:"not_run,omitempty" yaml:"not_run,omitempty"`
	Aborted  string          `json:"aborted,omitempty" yaml:"aborted,omitempty"`
}

// Entry is one executed test case.
type Entry struct {
	Suite      string          `json:"suite" yaml:"suite"`
	Name       string          `json:"name" yaml:"name"`
	File       string          `json:"file,omitempty" yaml:"file,omitempty"`
	Line       int             `json:"line,omitempty" yaml:"line,omitempty"`
	Outcome    harness.Outcome `json:"outcome" yaml:"outcome"`
	Message    string          `json:"message,omitempty" yaml:"message,omitempty"`
	DurationNS int64           `json:"duration_ns" yaml:"duration_ns"`
	Failures   []Failure       `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failure is a file/line/message triplet plus renderings.
type Failure struct {
	Phase    harness.Phase `json:"phase" yaml:"phase"`
	File     string        `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int           `json:"line,omitempty" yaml:"line,omitempty"`
	Message  string        `json:"message" yaml:"message"`
	Expected string        `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string        `json:"actual,omitempty" yaml:"actual,omitempty"`
	Diff     string        `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// NewDocument converts a harness report into its serialized form.
func NewDocument(r *harness.Report) *Document {
	doc := &Document{
		RunID:    r.RunID,
		Started:  formatTime(r.Started),
		Finished: formatTime(r.Finished),
		Summary:  r.Summary(),
		Tests:    make([]Entry, 0, len(r.Results)),
		NotRun:   r.NotRun,
		Aborted:  r.Aborted,
	}
	for _, res := range r.Results {
		e := Entry{
			Suite:      res.Suite,
			Name:       res.Name,
			File:       res.File,
			Line:       res.Line,
			Outcome:    res.Outcome,
			Message:    res.Message,
			DurationNS: int64(res.Duration),
		}
		for _, f := range res.Failures() {
			e.Failures = append(e.Failures, Failure{
				Phase:    f.Phase,
				File:     f.File,
				Line:     f.Line,
				Message:  f.Message,
				Expected: f.Expected,
				Actual:   f.Actual,
				Diff:     f.Diff,
			})
		}
		doc.Tests = append(doc.Tests, e)
	}
	return doc
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ID returns "suite/name".
func (e Entry) ID() string {
	return e.Suite + "/" + e.Name
}

// Parse reads a json results file.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &doc, nil
}

// Check is the results-file sanity check: the summary counts must equal
// the per-test entries, every outcome must be known, and no case may be
// listed twice.
func (d *Document) Check() error {
	var got harness.Summary
	seen := make(map[string]bool, len(d.Tests)+len(d.NotRun))
	for _, e := range d.Tests {
		if seen[e.ID()] {
			return fmt.Errorf("test %s listed more than once", e.ID())
		}
		seen[e.ID()] = true
		got.Total++
		switch e.Outcome {
		case harness.OutcomePass:
			got.Passed++
		case harness.OutcomeFail:
			got.Failed++
		case harness.OutcomeIgnored:
			got.Ignored++
		case harness.OutcomeCrashed:
			got.Crashed++
		default:
			return fmt.Errorf("test %s has invalid outcome %q", e.ID(), e.Outcome)
		}
	}
	for _, id := range d.NotRun {
		if seen[id] {
			return fmt.Errorf("test %s listed more than once", id)
		}
		seen[id] = true
		got.NotRun++
	}
	if got != d.Summary {
		return fmt.Errorf("summary %+v does not match entries %+v", d.Summary, got)
	}
	return nil
}

// OK mirrors harness.Report.OK for a parsed document.
func (d *Document) OK() bool {
	return d.Summary.Failed == 0 && d.Summary.Crashed == 0 && d.Summary.NotRun == 0
}

// Failed lists the IDs that did not PASS or get IGNORED, then those not run.
func (d *Document) Failed() []string {
	var ids []string
	for _, e := range d.Tests {
		if !e.Outcome.OK() {
			ids = append(ids, e.ID())
		}
	}
	return append(ids, d.NotRun...)
}
