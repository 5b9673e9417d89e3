// Package faults demonstrates every non-passing outcome. Run it with
// isolation to see the crash contained to its own case.
package faults

import (
	"runtime"

	"github.com/roach88/fixturekit/internal/examples/calc"
	"github.com/roach88/fixturekit/internal/harness"
)

// Suite returns tests that fail, get ignored or crash on purpose.
func Suite() harness.Suite {
	var ops *calc.FakeOps
	_, file, _, _ := runtime.Caller(0)

	return harness.Suite{
		Name: "faults",
		File: file,
		SetUp: func(t *harness.T) {
			ops = calc.NewFakeOps(t.Ledger())
		},
		Tests: []harness.Test{
			{Name: "PrimedWrongReturn", Body: func(t *harness.T) {
				ops.AddFn.ExpectAndReturn(3, 5, 8)
				ops.SubtractFn.ExpectAndReturn(8, 2, 0)

				t.AssertEqual(6, calc.AFunction(ops, 3, 5, 2))
			}},
			{Name: "UnexpectedCall", Body: func(t *harness.T) {
				calc.AFunction(ops, 1, 2, 3)
			}},
			{Name: "WrongArgument", Body: func(t *harness.T) {
				ops.AddFn.ExpectAndReturn(3, 5, 8)
				ops.SubtractFn.ExpectAndReturn(8, 3, 5)

				calc.AFunction(ops, 3, 5, 2)
			}},
			{Name: "MissingCall", Body: func(t *harness.T) {
				ops.AddFn.ExpectAndReturn(3, 5, 8)
				ops.SubtractFn.ExpectAndReturn(8, 2, 6)

				ops.Add(3, 5)
			}},
			{Name: "NotOnThisTarget", Body: func(t *harness.T) {
				t.Ignore("needs the serial loopback rig")
			}},
			{Name: "NilDereference", Body: func(t *harness.T) {
				var missing *calc.FakeOps
				missing.AddFn.ExpectAndReturn(1, 1, 2)
			}},
			{Name: "AfterCrash", Body: func(t *harness.T) {
				t.AssertTrue(true)
			}},
		},
	}
}
