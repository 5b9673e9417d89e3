package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Clock supplies wall-clock readings for durations and report timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Observer is notified as the run progresses. Both methods are called on
// the goroutine that called Run.
type Observer interface {
	TestStarted(tc TestCase)
	TestFinished(res TestResult)
}

// Runner executes test cases through the setUp → body → verify → tearDown
// lifecycle and collects a Report.
type Runner struct {
	logger   *slog.Logger
	clock    Clock
	filters  []string
	only     map[string]bool
	failFast bool
	isolator *Isolator
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock replaces the wall clock (tests use a deterministic one).
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithFilter keeps only cases whose ID matches at least one doublestar
// pattern, e.g. "calc/*" or "**/*Overflow*".
func WithFilter(patterns ...string) Option {
	return func(r *Runner) { r.filters = append(r.filters, patterns...) }
}

// WithOnly keeps only the cases with the given IDs (used to re-run the
// failures of a previous run).
func WithOnly(ids []string) Option {
	return func(r *Runner) {
		r.only = make(map[string]bool, len(ids))
		for _, id := range ids {
			r.only[id] = true
		}
	}
}

// WithFailFast stops the run after the first case that is not PASS or
// IGNORED.
func WithFailFast(on bool) Option {
	return func(r *Runner) { r.failFast = on }
}

// WithIsolation runs every case in a child process via iso.
func WithIsolation(iso *Isolator) Option {
	return func(r *Runner) { r.isolator = iso }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateFilters reports the first malformed doublestar pattern.
func ValidateFilters(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid filter pattern %q", p)
		}
	}
	return nil
}

// Select flattens suites into cases, applying the filter and only-set.
func (r *Runner) Select(suites []Suite) []TestCase {
	var cases []TestCase
	for _, s := range suites {
		for _, tc := range s.Cases() {
			if r.selected(tc) {
				cases = append(cases, tc)
			}
		}
	}
	return cases
}

func (r *Runner) selected(tc TestCase) bool {
	if r.only != nil && !r.only[tc.ID()] {
		return false
	}
	if len(r.filters) == 0 {
		return true
	}
	for _, p := range r.filters {
		if ok, err := doublestar.Match(p, tc.ID()); err == nil && ok {
			return true
		}
	}
	return false
}

// Run executes every selected case sequentially.
//
// In-process, a CRASHED case ends the run: the remaining cases are listed
// in Report.NotRun. With isolation the run continues. Cancelling ctx stops
// the run between cases, or abandons an isolated case in flight; either way
// the unfinished cases are listed as not run.
func (r *Runner) Run(ctx context.Context, suites []Suite) *Report {
	cases := r.Select(suites)
	report := &Report{Started: r.clock.Now()}
	r.logger.Info("starting run", "cases", len(cases), "isolated", r.isolator != nil)

	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			report.Aborted = fmt.Sprintf("interrupted: %v", err)
			report.NotRun = remainingIDs(cases[i:])
			break
		}

		if r.observer != nil {
			r.observer.TestStarted(tc)
		}
		res, err := r.execute(ctx, tc)
		if err != nil {
			report.Aborted = fmt.Sprintf("interrupted: %v", err)
			report.NotRun = remainingIDs(cases[i:])
			r.logger.Warn("run interrupted", "test", tc.ID(), "error", err)
			break
		}
		report.Add(res)
		if r.observer != nil {
			r.observer.TestFinished(res)
		}
		r.logger.Debug("test finished", "test", tc.ID(), "outcome", res.Outcome, "duration", res.Duration)

		if res.Outcome == OutcomeCrashed && r.isolator == nil {
			report.Aborted = fmt.Sprintf("%s crashed: %s", tc.ID(), res.Message)
			report.NotRun = remainingIDs(cases[i+1:])
			r.logger.Error("run aborted by fatal fault", "test", tc.ID(), "reason", res.Message)
			break
		}
		if r.failFast && !res.Outcome.OK() {
			report.Aborted = fmt.Sprintf("fail-fast after %s", tc.ID())
			report.NotRun = remainingIDs(cases[i+1:])
			break
		}
	}

	report.Finished = r.clock.Now()
	s := report.Summary()
	r.logger.Info("run complete",
		"total", s.Total, "passed", s.Passed, "failed", s.Failed,
		"ignored", s.Ignored, "crashed", s.Crashed, "not_run", s.NotRun)
	return report
}

// execute runs one case in-process or isolated. The error is non-nil only
// when ctx was cancelled while an isolated case was in flight; that case
// did not run to completion.
func (r *Runner) execute(ctx context.Context, tc TestCase) (TestResult, error) {
	if r.isolator == nil {
		return r.RunTestCase(tc), nil
	}
	start := r.clock.Now()
	res, err := r.isolator.Run(ctx, tc)
	if err != nil && ctx.Err() != nil {
		return TestResult{}, ctx.Err()
	}
	if err != nil {
		res = TestResult{
			Suite:   tc.Suite,
			Name:    tc.Name,
			File:    tc.File,
			Outcome: OutcomeCrashed,
			Message: err.Error(),
		}
	}
	res.Isolated = true
	res.Duration = r.clock.Now().Sub(start)
	return res, nil
}

// RunTestCase runs one case in-process.
//
// setUp runs first. If it fails or ignores, the body and the ledger check
// are skipped. tearDown runs after everything except a fatal fault.
func (r *Runner) RunTestCase(tc TestCase) TestResult {
	start := r.clock.Now()
	t := newT(tc, r.logger)

	r.runPhase(t, PhaseSetUp, tc.SetUp)
	if !t.stopped() {
		r.runPhase(t, PhaseBody, tc.Body)
		if !t.stopped() {
			t.verify()
		}
	}
	if !t.crashed() {
		// Expectations primed by a setUp or body that stopped early were
		// never verified; tearDown starts from an empty ledger.
		if t.stopped() {
			t.ledger.Reset()
		}
		r.runPhase(t, PhaseTearDown, tc.TearDown)
	}

	res := t.result()
	res.Duration = r.clock.Now().Sub(start)
	return res
}

// runPhase runs fn on its own goroutine so failing assertions can unwind
// it with runtime.Goexit; panics are recovered and classified there.
func (r *Runner) runPhase(t *T, phase Phase, fn TestFunc) {
	if fn == nil {
		return
	}
	t.setPhase(phase)

	done := make(chan struct{})
	go func() {
		defer close(done)
		finished := false
		defer func() {
			if finished {
				return
			}
			// recover returns nil for runtime.Goexit, which means the
			// phase already recorded why it stopped.
			if v := recover(); v != nil {
				t.recordPanic(v, debug.Stack())
			}
		}()
		fn(t)
		finished = true
	}()
	<-done
}

func remainingIDs(cases []TestCase) []string {
	ids := make([]string, len(cases))
	for i, tc := range cases {
		ids[i] = tc.ID()
	}
	return ids
}
