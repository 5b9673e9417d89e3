package harness

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Fault is a fatal fault: a memory-access violation or an explicit
// T.Crash. A Fault ends the test as CRASHED and, without process
// isolation, ends the whole run.
type Fault struct {
	Test   string
	Reason string
	Stack  string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Test == "" {
		return "fatal fault: " + f.Reason
	}
	return fmt.Sprintf("fatal fault in %s: %s", f.Test, f.Reason)
}

// IsFault reports whether err is (or wraps) a *Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// isFatalPanic reports whether a recovered panic value is a fatal fault.
// Only nil dereferences and invalid memory accesses qualify; other runtime
// errors (bounds, conversions, closed channels) are ordinary failures.
func isFatalPanic(v any) bool {
	switch val := v.(type) {
	case *Fault:
		return true
	case runtime.Error:
		msg := val.Error()
		return strings.Contains(msg, "invalid memory address") ||
			strings.Contains(msg, "nil pointer dereference")
	case error:
		return IsFault(val)
	}
	return false
}
