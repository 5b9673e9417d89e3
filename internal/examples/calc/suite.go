package calc

import (
	"runtime"

	"github.com/roach88/fixturekit/internal/harness"
)

// Suite returns the calc tests. Every case passes.
func Suite() harness.Suite {
	var ops *FakeOps
	_, file, _, _ := runtime.Caller(0)

	return harness.Suite{
		Name: "calc",
		File: file,
		SetUp: func(t *harness.T) {
			ops = NewFakeOps(t.Ledger())
		},
		TearDown: func(t *harness.T) {
			ops = nil
		},
		Tests: []harness.Test{
			{Name: "AddThenSubtract", Body: func(t *harness.T) {
				ops.AddFn.ExpectAndReturn(3, 5, 8)
				ops.SubtractFn.ExpectAndReturn(8, 2, 6)

				t.AssertEqual(6, AFunction(ops, 3, 5, 2))
			}},
			{Name: "AddCallbackComputesResult", Body: func(t *harness.T) {
				ops.AddFn.ExpectAndCall(func(a, b int) int { return a + b })
				ops.SubtractFn.ExpectAnyArgsAndReturn(-1)

				t.AssertEqual(-1, AFunction(ops, 40, 2, 43))
			}},
			{Name: "NativeOps", Body: func(t *harness.T) {
				t.AssertEqual(6, AFunction(Native{}, 3, 5, 2))
				t.AssertEqual(0, t.Ledger().Pending(), "native ops must not touch the ledger")
			}},
		},
	}
}
