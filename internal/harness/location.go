package harness

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/roach88/fixturekit/internal/ledger"
)

var (
	harnessPkg = reflect.TypeOf(T{}).PkgPath() + "."
	ledgerPkg  = reflect.TypeOf(ledger.Ledger{}).PkgPath() + "."
)

// callerLocation finds the first stack frame outside the harness and ledger
// packages (their _test.go files excepted) that is not a registered helper.
func callerLocation(helpers map[string]bool) (string, int, bool) {
	var pcs [64]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !skipFrame(frame, helpers) {
			return frame.File, frame.Line, true
		}
		if !more {
			return "", 0, false
		}
	}
}

func skipFrame(frame runtime.Frame, helpers map[string]bool) bool {
	fn := frame.Function
	if fn == "" || strings.HasPrefix(fn, "runtime.") {
		return true
	}
	if helpers[fn] {
		return true
	}
	if strings.HasSuffix(frame.File, "_test.go") {
		return false
	}
	return strings.HasPrefix(fn, harnessPkg) || strings.HasPrefix(fn, ledgerPkg)
}

// callerFunc returns the function name skip frames above its caller.
func callerFunc(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return fn.Name()
}
