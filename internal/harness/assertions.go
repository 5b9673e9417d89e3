package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"runtime"
	"sync"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fixturekit/internal/ledger"
)

// T is handed to setUp, body and tearDown. It records assertion results,
// owns the per-test expectation ledger, and aborts the running phase on the
// first failure.
//
// Methods that stop the phase (failing assertions, Fail, Ignore, Crash) must
// be called from the goroutine running the phase, as with testing.T.
type T struct {
	tc     TestCase
	logger *slog.Logger
	ledger *ledger.Ledger

	mu         sync.Mutex
	phase      Phase
	assertions []AssertionResult
	helpers    map[string]bool

	failed     bool
	ignored    bool
	ignoreMsg  string
	fault      *Fault
	setUpError bool
}

func newT(tc TestCase, logger *slog.Logger) *T {
	t := &T{
		tc:      tc,
		logger:  logger,
		helpers: make(map[string]bool),
	}
	t.ledger = ledger.New(t)
	return t
}

// Name returns the case ID, "suite/name".
func (t *T) Name() string { return t.tc.ID() }

// Ledger returns the expectation ledger for this test. A fresh ledger is
// created for every test case.
func (t *T) Ledger() *ledger.Ledger { return t.ledger }

// Expect is shorthand for t.Ledger().Expect.
func (t *T) Expect(fn string, args ...any) *ledger.Expectation {
	return t.ledger.Expect(fn, args...)
}

// Helper marks the calling function as a helper: failure locations skip it.
func (t *T) Helper() {
	if fn := callerFunc(1); fn != "" {
		t.MarkHelper(fn)
	}
}

// MarkHelper implements ledger.HelperMarker.
func (t *T) MarkHelper(fn string) {
	t.mu.Lock()
	t.helpers[fn] = true
	t.mu.Unlock()
}

// Log writes a debug line attributed to this test.
func (t *T) Log(args ...any) {
	t.logger.Debug(fmt.Sprint(args...), "test", t.Name(), "phase", t.currentPhase())
}

// Logf is Log with a format.
func (t *T) Logf(format string, args ...any) {
	t.logger.Debug(fmt.Sprintf(format, args...), "test", t.Name(), "phase", t.currentPhase())
}

// AssertEqual checks expected and actual for value equality.
func (t *T) AssertEqual(expected, actual any, msgAndArgs ...any) {
	if assert.ObjectsAreEqual(expected, actual) {
		t.pass()
		return
	}
	exp, act := renderValue(expected), renderValue(actual)
	t.failNow(AssertionResult{
		Expected: exp,
		Actual:   act,
		Diff:     renderDiff(expected, actual),
		Message:  joinMessage(fmt.Sprintf("Expected %s Was %s", exp, act), formatMessage(msgAndArgs...)),
	})
}

// AssertNotEqual checks that expected and actual differ.
func (t *T) AssertNotEqual(expected, actual any, msgAndArgs ...any) {
	if !assert.ObjectsAreEqual(expected, actual) {
		t.pass()
		return
	}
	act := renderValue(actual)
	t.failNow(AssertionResult{
		Expected: "not " + renderValue(expected),
		Actual:   act,
		Message:  joinMessage(fmt.Sprintf("Expected Not-Equal Was %s", act), formatMessage(msgAndArgs...)),
	})
}

// AssertTrue checks that cond holds.
func (t *T) AssertTrue(cond bool, msgAndArgs ...any) {
	if cond {
		t.pass()
		return
	}
	t.failNow(AssertionResult{
		Expected: "true",
		Actual:   "false",
		Message:  joinMessage("Expected TRUE Was FALSE", formatMessage(msgAndArgs...)),
	})
}

// AssertFalse checks that cond does not hold.
func (t *T) AssertFalse(cond bool, msgAndArgs ...any) {
	if !cond {
		t.pass()
		return
	}
	t.failNow(AssertionResult{
		Expected: "false",
		Actual:   "true",
		Message:  joinMessage("Expected FALSE Was TRUE", formatMessage(msgAndArgs...)),
	})
}

// AssertFloatWithin passes iff |expected-actual| <= |tolerance|. Equal
// values (including equal infinities) always pass; NaN never does.
func (t *T) AssertFloatWithin(tolerance, expected, actual float64, msgAndArgs ...any) {
	if floatWithin(tolerance, expected, actual) {
		t.pass()
		return
	}
	exp := fmt.Sprintf("%g +/- %g", expected, math.Abs(tolerance))
	act := fmt.Sprintf("%g", actual)
	t.failNow(AssertionResult{
		Expected: exp,
		Actual:   act,
		Message:  joinMessage(fmt.Sprintf("Expected %s Was %s", exp, act), formatMessage(msgAndArgs...)),
	})
}

func floatWithin(tolerance, expected, actual float64) bool {
	if math.IsNaN(expected) || math.IsNaN(actual) || math.IsNaN(tolerance) {
		return false
	}
	if expected == actual {
		return true
	}
	return math.Abs(expected-actual) <= math.Abs(tolerance)
}

// AssertNil checks that v is nil (including typed nil pointers, maps,
// slices, channels and funcs).
func (t *T) AssertNil(v any, msgAndArgs ...any) {
	if isNil(v) {
		t.pass()
		return
	}
	act := renderValue(v)
	t.failNow(AssertionResult{
		Expected: "nil",
		Actual:   act,
		Message:  joinMessage("Expected NULL Was "+act, formatMessage(msgAndArgs...)),
	})
}

// AssertNotNil checks that v is not nil.
func (t *T) AssertNotNil(v any, msgAndArgs ...any) {
	if !isNil(v) {
		t.pass()
		return
	}
	t.failNow(AssertionResult{
		Expected: "non-nil",
		Actual:   "nil",
		Message:  joinMessage("Expected Non-NULL", formatMessage(msgAndArgs...)),
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// Fail records an unconditional failure and stops the phase.
func (t *T) Fail(msgAndArgs ...any) {
	msg := formatMessage(msgAndArgs...)
	if msg == "" {
		msg = "Failed"
	}
	t.failNow(AssertionResult{Message: msg})
}

// Ignore marks the test IGNORED and stops the phase.
func (t *T) Ignore(msgAndArgs ...any) {
	t.mu.Lock()
	t.ignored = true
	t.ignoreMsg = formatMessage(msgAndArgs...)
	t.mu.Unlock()
	runtime.Goexit()
}

// Crash raises a fatal fault, exactly as a nil dereference would.
func (t *T) Crash(msgAndArgs ...any) {
	reason := formatMessage(msgAndArgs...)
	if reason == "" {
		reason = "crash requested"
	}
	panic(&Fault{Test: t.Name(), Reason: reason})
}

// Fatal implements ledger.Reporter: a ledger failure is an assertion
// failure at the call site (or, for mismatches, at the priming Expect).
func (t *T) Fatal(err error) {
	res := AssertionResult{Message: err.Error()}
	var ce *ledger.CallError
	if errors.As(err, &ce) {
		res.Expected, res.Actual = ce.Expected, ce.Actual
		if ce.File != "" {
			res.File, res.Line = ce.File, ce.Line
		}
	}
	t.failNow(res)
}

// Locate implements ledger.Locator.
func (t *T) Locate() (string, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	file, line, _ := callerLocation(t.helpers)
	return file, line
}

// Failed reports whether any failure has been recorded so far.
func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

func (t *T) pass() {
	t.record(AssertionResult{Passed: true})
}

func (t *T) failNow(res AssertionResult) {
	t.record(res)
	runtime.Goexit()
}

// record stamps res with test, phase and (if unset) caller location.
func (t *T) record(res AssertionResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res.Test = t.tc.ID()
	res.Phase = t.phase
	if !res.Passed && res.File == "" {
		if file, line, ok := callerLocation(t.helpers); ok {
			res.File, res.Line = file, line
		} else {
			res.File = t.tc.File
		}
	}
	t.assertions = append(t.assertions, res)
	if !res.Passed {
		t.failed = true
		if t.phase == PhaseSetUp {
			t.setUpError = true
		}
	}
}

// recordPanic classifies a recovered panic: fatal faults crash the test,
// anything else is an ordinary failure of the current phase.
func (t *T) recordPanic(v any, stack []byte) {
	if isFatalPanic(v) {
		f, ok := v.(*Fault)
		if !ok {
			f = &Fault{Test: t.Name(), Reason: fmt.Sprint(v)}
		}
		f.Stack = string(stack)
		t.mu.Lock()
		t.fault = f
		t.mu.Unlock()
		return
	}
	t.record(AssertionResult{Message: fmt.Sprintf("panic: %v", v)})
}

func (t *T) setPhase(p Phase) {
	t.mu.Lock()
	t.phase = p
	t.mu.Unlock()
}

func (t *T) currentPhase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *T) crashed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fault != nil
}

// stopped reports whether later phases other than tearDown must be skipped.
func (t *T) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed || t.ignored || t.fault != nil
}

// verify checks the ledger for leftover expectations; it runs on the
// runner's goroutine after a clean body.
func (t *T) verify() {
	t.setPhase(PhaseVerify)
	err := t.ledger.Verify()
	if err == nil {
		return
	}
	for _, e := range unjoin(err) {
		res := AssertionResult{Message: e.Error()}
		var ce *ledger.CallError
		if errors.As(e, &ce) {
			res.Expected = ce.Expected
			res.File, res.Line = ce.File, ce.Line
		}
		if res.File == "" {
			res.File = t.tc.File
		}
		t.record(res)
	}
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// result computes the terminal outcome. Precedence: CRASHED, FAIL, IGNORED,
// PASS.
func (t *T) result() TestResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := TestResult{
		Suite:       t.tc.Suite,
		Name:        t.tc.Name,
		File:        t.tc.File,
		Assertions:  t.assertions,
		SetUpFailed: t.setUpError,
	}
	switch {
	case t.fault != nil:
		res.Outcome = OutcomeCrashed
		res.Message = t.fault.Reason
		res.Stack = t.fault.Stack
	case t.failed:
		res.Outcome = OutcomeFail
		for _, a := range t.assertions {
			if !a.Passed {
				res.Message, res.Line = a.Message, a.Line
				if a.File != "" {
					res.File = a.File
				}
				break
			}
		}
	case t.ignored:
		res.Outcome = OutcomeIgnored
		res.Message = t.ignoreMsg
	default:
		res.Outcome = OutcomePass
	}
	return res
}
