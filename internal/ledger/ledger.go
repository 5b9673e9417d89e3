package ledger

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Reporter receives failures detected while faked calls are consumed.
//
// Implementations are expected to stop the calling test (harness.T aborts
// the running phase). If Fatal returns, Consume returns nil results.
type Reporter interface {
	Fatal(err error)
}

// Locator is optionally implemented by a Reporter to stamp each
// expectation with the source position that primed it.
type Locator interface {
	Locate() (file string, line int)
}

// HelperMarker is optionally implemented by a Reporter that locates failures
// by walking the stack. fn is a fully qualified function name, as reported
// by runtime.FuncForPC, whose frames are skipped.
type HelperMarker interface {
	MarkHelper(fn string)
}

// Ledger is an ordered queue of expected calls.
//
// Ledgers are safe for concurrent use, although matching is strictly FIFO
// so concurrent callers only make sense when their order is fixed.
type Ledger struct {
	mu       sync.Mutex
	queue    *expectationQueue
	reporter Reporter
	enqueued int
	consumed int
}

// New creates an empty ledger reporting to r.
// A nil Reporter makes Consume panic with the *CallError instead.
func New(r Reporter) *Ledger {
	return &Ledger{
		queue:    newExpectationQueue(),
		reporter: r,
	}
}

// Expectation is a single anticipated call.
type Expectation struct {
	Function string
	Args     []any

	// File and Line locate the Expect call, when the Reporter is a Locator.
	File string
	Line int

	ledger   *Ledger
	returns  []any
	callback func(args []any) []any
	position int
}

// Returns sets the values handed back to the caller when this expectation
// is consumed.
func (e *Expectation) Returns(vals ...any) *Expectation {
	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()
	e.returns = vals
	e.callback = nil
	return e
}

// Do makes the expectation compute its return values with fn, which
// receives the actual call arguments. Do replaces any canned Returns.
func (e *Expectation) Do(fn func(args []any) []any) *Expectation {
	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()
	e.callback = fn
	e.returns = nil
	return e
}

// String renders the expected call, e.g. `add(3, 5) -> 8`.
func (e *Expectation) String() string {
	call := FormatCall(e.Function, e.Args)
	switch {
	case e.callback != nil:
		return call + " -> <callback>"
	case len(e.returns) == 1:
		return call + " -> " + FormatValue(e.returns[0])
	case len(e.returns) > 1:
		return call + " -> " + FormatCall("", e.returns)
	}
	return call
}

// Position returns the 1-based enqueue position of the expectation.
func (e *Expectation) Position() int {
	return e.position
}

// Expect enqueues an expected call to fn with the given arguments.
// Arguments implementing Matcher are matched with it; others by value.
func (l *Ledger) Expect(fn string, args ...any) *Expectation {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.enqueued++
	e := &Expectation{
		Function: fn,
		Args:     args,
		ledger:   l,
		position: l.enqueued,
	}
	if loc, ok := l.reporter.(Locator); ok {
		e.File, e.Line = loc.Locate()
	}
	l.queue.Push(e)
	return e
}

// Consume matches a call against the head expectation and returns its
// canned (or computed) values. Failures go to the Reporter.
func (l *Ledger) Consume(fn string, args ...any) []any {
	out, err := l.TryConsume(fn, args...)
	if err != nil {
		l.fail(err)
		return nil
	}
	return out
}

// TryConsume is Consume without reporting: the failure is returned instead.
//
// The head expectation is dequeued even when it does not match, so a failed
// call never leaves a stale expectation behind for Verify to report twice.
func (l *Ledger) TryConsume(fn string, args ...any) ([]any, error) {
	actual := FormatCall(fn, args)

	l.mu.Lock()
	exp, ok := l.queue.Pop()
	if !ok {
		l.mu.Unlock()
		return nil, newUnexpectedCall(actual, fn)
	}
	l.consumed++
	returns, callback := exp.returns, exp.callback
	l.mu.Unlock()

	if exp.Function != fn {
		return nil, newWrongFunction(exp, actual, fn)
	}
	if idx, ok := matchArgs(exp.Args, args); !ok {
		return nil, newArgumentMismatch(exp, actual, idx)
	}

	// Callbacks run outside the lock so they may prime further expectations.
	if callback != nil {
		return callback(args), nil
	}
	return returns, nil
}

// Verify drains the queue and returns one MISSING_EXPECTATION error per
// leftover expectation, joined with errors.Join. Returns nil when every
// expectation was consumed.
func (l *Ledger) Verify() error {
	l.mu.Lock()
	leftovers := l.queue.Drain()
	l.mu.Unlock()

	if len(leftovers) == 0 {
		return nil
	}
	errs := make([]error, len(leftovers))
	for i, exp := range leftovers {
		errs[i] = newMissingExpectation(exp)
	}
	return errors.Join(errs...)
}

// Pending returns the number of expectations not yet consumed.
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// Consumed returns how many calls have been matched against the queue,
// successfully or not.
func (l *Ledger) Consumed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumed
}

// Reset discards all pending expectations and counters.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue.Drain()
	l.enqueued = 0
	l.consumed = 0
}

func (l *Ledger) fail(err error) {
	if l.reporter == nil {
		panic(err)
	}
	l.reporter.Fatal(err)
}

// returnAt extracts the i-th return value as R. Missing or nil values yield
// the zero R; a value of the wrong type is a priming mistake and panics.
func returnAt[R any](fn string, out []any, i int) R {
	var zero R
	if i >= len(out) || out[i] == nil {
		return zero
	}
	v, ok := out[i].(R)
	if !ok {
		panic(fmt.Sprintf("ledger: expectation for %s returns %T at position %d, want %T", fn, out[i], i, zero))
	}
	return v
}

// Helper marks the calling function as a fake wrapper. A failure raised
// while it consumes a call is then located at the wrapper's caller, not
// inside the fake. It is a no-op unless the Reporter is a HelperMarker.
func (l *Ledger) Helper() {
	m, ok := l.reporter.(HelperMarker)
	if !ok {
		return
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		m.MarkHelper(fn.Name())
	}
}
