package ledger

import (
	"errors"
	"fmt"
)

// CallErrorCode categorizes ledger failures.
type CallErrorCode string

const (
	// ErrCodeUnexpectedCall indicates a faked function was called with no
	// expectation queued.
	ErrCodeUnexpectedCall CallErrorCode = "UNEXPECTED_CALL"

	// ErrCodeArgumentMismatch indicates the call does not match the head
	// expectation (wrong function or wrong arguments).
	ErrCodeArgumentMismatch CallErrorCode = "ARGUMENT_MISMATCH"

	// ErrCodeMissingExpectation indicates an expectation was never consumed.
	ErrCodeMissingExpectation CallErrorCode = "MISSING_EXPECTATION"
)

// CallError describes a single ledger failure.
//
// Expected and Actual are human-readable call renderings such as
// `subtract(8, 2)`; either may be empty when there is nothing to render
// (an unexpected call has no expected side, a missing expectation no actual).
type CallError struct {
	Code     CallErrorCode
	Message  string
	Function string
	Expected string
	Actual   string

	// Position is the 1-based enqueue position of the expectation involved,
	// or 0 for unexpected calls.
	Position int

	// File and Line locate the priming Expect call, if known.
	File string
	Line int
}

// Error implements the error interface.
func (e *CallError) Error() string {
	switch {
	case e.Expected != "" && e.Actual != "":
		return fmt.Sprintf("%s: %s (expected %s, got %s)", e.Code, e.Message, e.Expected, e.Actual)
	case e.Expected != "":
		return fmt.Sprintf("%s: %s (expected %s)", e.Code, e.Message, e.Expected)
	case e.Actual != "":
		return fmt.Sprintf("%s: %s (got %s)", e.Code, e.Message, e.Actual)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnexpectedCall reports whether err is (or wraps) an unexpected-call failure.
func IsUnexpectedCall(err error) bool {
	return hasCode(err, ErrCodeUnexpectedCall)
}

// IsArgumentMismatch reports whether err is (or wraps) an argument mismatch.
func IsArgumentMismatch(err error) bool {
	return hasCode(err, ErrCodeArgumentMismatch)
}

// IsMissingExpectation reports whether err is (or wraps, possibly via
// errors.Join) a missing-expectation failure.
func IsMissingExpectation(err error) bool {
	return hasCode(err, ErrCodeMissingExpectation)
}

func hasCode(err error, code CallErrorCode) bool {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newUnexpectedCall(actual string, fn string) *CallError {
	return &CallError{
		Code:     ErrCodeUnexpectedCall,
		Message:  "unexpected call: no expectations queued",
		Function: fn,
		Actual:   actual,
	}
}

func newWrongFunction(exp *Expectation, actual string, fn string) *CallError {
	return &CallError{
		Code:     ErrCodeArgumentMismatch,
		Message:  fmt.Sprintf("called %s out of order: expectation #%d is for %s", fn, exp.position, exp.Function),
		Function: fn,
		Expected: exp.String(),
		Actual:   actual,
		Position: exp.position,
		File:     exp.File,
		Line:     exp.Line,
	}
}

func newArgumentMismatch(exp *Expectation, actual string, argIndex int) *CallError {
	var msg string
	if argIndex >= 0 {
		msg = fmt.Sprintf("called %s with wrong argument %d", exp.Function, argIndex+1)
	} else {
		msg = fmt.Sprintf("called %s with wrong number of arguments", exp.Function)
	}
	return &CallError{
		Code:     ErrCodeArgumentMismatch,
		Message:  msg,
		Function: exp.Function,
		Expected: exp.String(),
		Actual:   actual,
		Position: exp.position,
		File:     exp.File,
		Line:     exp.Line,
	}
}

func newMissingExpectation(exp *Expectation) *CallError {
	return &CallError{
		Code:     ErrCodeMissingExpectation,
		Message:  fmt.Sprintf("missing expectation: %s was never called", exp.Function),
		Function: exp.Function,
		Expected: exp.String(),
		Position: exp.position,
		File:     exp.File,
		Line:     exp.Line,
	}
}
