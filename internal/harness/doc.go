// Package harness runs mock-based unit tests through a fixture lifecycle
// and classifies each one as PASS, FAIL, IGNORED or CRASHED.
//
// # Lifecycle
//
// Every TestCase runs as:
//
//	setUp → body → ledger verification → tearDown
//
// Each phase runs on its own goroutine. The first failing assertion records
// an AssertionResult and unwinds the phase with runtime.Goexit, so the rest
// of the body is skipped while the runner carries on. Rules:
//
//   - setUp failure: FAIL (and Report.SetUpFailures++); body skipped,
//     tearDown still runs, the run continues.
//   - body failure or non-fatal panic: FAIL; tearDown runs.
//   - Ignore: IGNORED; tearDown runs.
//   - leftover expectations after a clean body: FAIL.
//   - nil dereference, invalid memory access or T.Crash: CRASHED; tearDown
//     is skipped and, in-process, the run stops with the remaining cases
//     listed as not run.
//
// # Fixtures
//
// Fixture state lives in variables captured by a Suite's closures:
//
//	var c struct{ ops *fakeOps }
//
//	suite := harness.Suite{
//	    Name:  "calc",
//	    SetUp: func(t *harness.T) { c.ops = newFakeOps(t.Ledger()) },
//	    Tests: []harness.Test{
//	        {Name: "AddThenSubtract", Body: func(t *harness.T) {
//	            c.ops.add.ExpectAndReturn(3, 5, 8)
//	            c.ops.subtract.ExpectAndReturn(8, 2, 6)
//	            t.AssertEqual(6, calc.AFunction(c.ops, 3, 5, 2))
//	        }},
//	    },
//	}
//
// SetUp must reset every field; a fresh ledger is created per case.
//
// # Isolation
//
// With an Isolator every case runs in a re-executed child process (see
// ChildEnv and RunChild). A fault that kills the child then crashes only
// that case, and an optional timeout bounds each child.
package harness
