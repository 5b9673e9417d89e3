// Package ledger records expected calls to faked dependencies and verifies
// that the code under test makes them in order.
//
// # Expectations
//
// A test primes the ledger before exercising the code under test. Each
// expectation names a function, the arguments it must receive, and what it
// returns (or a callback that computes the return values):
//
//	l.Expect("add", 3, 5).Returns(8)
//	l.Expect("subtract", 8, 2).Returns(6)
//
// The fake's implementation consumes the head of the queue:
//
//	func (f *fakeMath) Add(a, b int) int {
//	    return f.l.Consume("add", a, b)[0].(int)
//	}
//
// Matching is strictly FIFO. A call with an empty queue, a call that does not
// match the head expectation, and expectations left over at the end of a test
// are three distinct failures (see CallError).
//
// # Typed fakes
//
// Func0..Func3 and Proc0..Proc2 wrap the ledger with one value per mocked
// signature so that fakes need no type assertions:
//
//	add := ledger.NewFunc2[int, int, int](l, "add")
//	add.ExpectAndReturn(3, 5, 8)
//	add.Call(3, 5) // 8
//
// # Reporting
//
// Failures detected while the code under test runs are handed to a Reporter.
// harness.T implements Reporter by recording a failed assertion and aborting
// the running test body. Hand-written fakes that wrap the typed fakes call
// Ledger.Helper first, so failures point at the code that called the fake:
//
//	func (f *FakeOps) Add(a, b int) int {
//		f.ledger.Helper()
//		return f.AddFn.Call(a, b)
//	}
package ledger
