package harness

import (
	"fmt"
	"time"
)

// Outcome is the terminal classification of a single test case.
type Outcome string

const (
	OutcomePass    Outcome = "PASS"
	OutcomeFail    Outcome = "FAIL"
	OutcomeIgnored Outcome = "IGNORED"
	OutcomeCrashed Outcome = "CRASHED"
)

// OK reports whether the outcome leaves the run successful.
func (o Outcome) OK() bool {
	return o == OutcomePass || o == OutcomeIgnored
}

// Valid reports whether o is one of the four known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomeIgnored, OutcomeCrashed:
		return true
	}
	return false
}

// Phase names the fixture phase an assertion was recorded in.
type Phase string

const (
	PhaseSetUp    Phase = "setUp"
	PhaseBody     Phase = "body"
	PhaseVerify   Phase = "verify"
	PhaseTearDown Phase = "tearDown"
)

// TestFunc is a setUp, body or tearDown function.
type TestFunc func(t *T)

// Suite groups test bodies that share one setUp/tearDown pair, the way a
// single test source file does.
//
// Fixture state belongs in variables captured by the suite's closures;
// SetUp must reset all of it so no state leaks between tests.
type Suite struct {
	Name     string
	File     string
	SetUp    TestFunc
	TearDown TestFunc
	Tests    []Test
}

// Test is one named body inside a Suite.
type Test struct {
	Name string
	Body TestFunc
}

// Cases expands the suite into runnable test cases, in declaration order.
func (s Suite) Cases() []TestCase {
	cases := make([]TestCase, len(s.Tests))
	for i, tst := range s.Tests {
		cases[i] = TestCase{
			Suite:    s.Name,
			Name:     tst.Name,
			File:     s.File,
			SetUp:    s.SetUp,
			Body:     tst.Body,
			TearDown: s.TearDown,
		}
	}
	return cases
}

// TestCase is a single registered test: a body plus the fixture functions
// bound to it. A TestCase is immutable once registered.
type TestCase struct {
	Suite    string
	Name     string
	File     string
	SetUp    TestFunc
	Body     TestFunc
	TearDown TestFunc
}

// ID returns the case identifier "suite/name" used by filters, reports and
// the results store.
func (tc TestCase) ID() string {
	return tc.Suite + "/" + tc.Name
}

// AssertionResult records the evaluation of one assertion (or one ledger
// failure). Expected and Actual are only rendered for failures.
type AssertionResult struct {
	Test     string `json:"test" yaml:"test"`
	Phase    Phase  `json:"phase" yaml:"phase"`
	Passed   bool   `json:"passed" yaml:"passed"`
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string `json:"actual,omitempty" yaml:"actual,omitempty"`
	Diff     string `json:"diff,omitempty" yaml:"diff,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// TestResult is the outcome of one TestCase plus everything recorded while
// it ran.
type TestResult struct {
	Suite   string  `json:"suite" yaml:"suite"`
	Name    string  `json:"name" yaml:"name"`
	File    string  `json:"file,omitempty" yaml:"file,omitempty"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Message is the first failure message, the ignore reason or the crash
	// reason. Line is the matching source line (0 if unknown).
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`

	Assertions  []AssertionResult `json:"assertions,omitempty" yaml:"assertions,omitempty"`
	Duration    time.Duration     `json:"duration_ns" yaml:"duration_ns"`
	SetUpFailed bool              `json:"setup_failed,omitempty" yaml:"setup_failed,omitempty"`
	Isolated    bool              `json:"isolated,omitempty" yaml:"isolated,omitempty"`
	Stack       string            `json:"stack,omitempty" yaml:"stack,omitempty"`
}

// ID returns "suite/name".
func (r TestResult) ID() string {
	return r.Suite + "/" + r.Name
}

// Failures returns the failed assertions, in the order they were recorded.
func (r TestResult) Failures() []AssertionResult {
	var out []AssertionResult
	for _, a := range r.Assertions {
		if !a.Passed {
			out = append(out, a)
		}
	}
	return out
}

// Summary holds per-outcome counts for a run.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Ignored int `json:"ignored" yaml:"ignored"`
	Crashed int `json:"crashed" yaml:"crashed"`
	NotRun  int `json:"not_run" yaml:"not_run"`
}

// Report accumulates results for one run, in execution order.
type Report struct {
	RunID    string       `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Started  time.Time    `json:"started" yaml:"started"`
	Finished time.Time    `json:"finished" yaml:"finished"`
	Results  []TestResult `json:"results" yaml:"results"`

	// NotRun lists the IDs of selected cases that never executed because
	// the run stopped early.
	NotRun []string `json:"not_run,omitempty" yaml:"not_run,omitempty"`

	// Aborted explains why the run stopped early, if it did.
	Aborted string `json:"aborted,omitempty" yaml:"aborted,omitempty"`

	// SetUpFailures counts cases whose setUp failed; any makes the run fail.
	SetUpFailures int `json:"setup_failures,omitempty" yaml:"setup_failures,omitempty"`
}

// Add appends a result.
func (r *Report) Add(res TestResult) {
	r.Results = append(r.Results, res)
	if res.SetUpFailed {
		r.SetUpFailures++
	}
}

// Summary tallies outcomes.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Results), NotRun: len(r.NotRun)}
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomePass:
			s.Passed++
		case OutcomeFail:
			s.Failed++
		case OutcomeIgnored:
			s.Ignored++
		case OutcomeCrashed:
			s.Crashed++
		}
	}
	return s
}

// OK reports whether every executed case passed or was ignored and no case
// was left unrun.
func (r *Report) OK() bool {
	if len(r.NotRun) > 0 || r.SetUpFailures > 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Outcome.OK() {
			return false
		}
	}
	return true
}

// ExitCode is 0 when OK, 1 otherwise.
func (r *Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Failed returns the IDs of every case that did not end PASS or IGNORED,
// followed by the cases that never ran.
func (r *Report) Failed() []string {
	var ids []string
	for _, res := range r.Results {
		if !res.Outcome.OK() {
			ids = append(ids, res.ID())
		}
	}
	return append(ids, r.NotRun...)
}

// Check validates internal consistency: every outcome is known, every case
// appears once, and failing outcomes carry a message.
func (r *Report) Check() error {
	seen := make(map[string]bool, len(r.Results)+len(r.NotRun))
	for _, res := range r.Results {
		id := res.ID()
		if !res.Outcome.Valid() {
			return fmt.Errorf("result %s: invalid outcome %q", id, res.Outcome)
		}
		if seen[id] {
			return fmt.Errorf("result %s: reported more than once", id)
		}
		seen[id] = true
		if res.Outcome == OutcomeFail && len(res.Failures()) == 0 && res.Message == "" {
			return fmt.Errorf("result %s: FAIL without a failure message", id)
		}
	}
	for _, id := range r.NotRun {
		if seen[id] {
			return fmt.Errorf("case %s: both executed and not run", id)
		}
		seen[id] = true
	}
	s := r.Summary()
	if s.Passed+s.Failed+s.Ignored+s.Crashed != s.Total {
		return fmt.Errorf("summary mismatch: %d+%d+%d+%d != %d", s.Passed, s.Failed, s.Ignored, s.Crashed, s.Total)
	}
	return nil
}
