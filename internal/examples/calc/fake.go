package calc

import "github.com/roach88/fixturekit/internal/ledger"

// FakeOps answers Add and Subtract from a ledger.
type FakeOps struct {
	AddFn      *ledger.Func2[int, int, int]
	SubtractFn *ledger.Func2[int, int, int]

	ledger *ledger.Ledger
}

// NewFakeOps binds both operations to l as "add" and "subtract".
func NewFakeOps(l *ledger.Ledger) *FakeOps {
	return &FakeOps{
		AddFn:      ledger.NewFunc2[int, int, int](l, "add"),
		SubtractFn: ledger.NewFunc2[int, int, int](l, "subtract"),
		ledger:     l,
	}
}

func (f *FakeOps) Add(a, b int) int {
	f.ledger.Helper()
	return f.AddFn.Call(a, b)
}

func (f *FakeOps) Subtract(a, b int) int {
	f.ledger.Helper()
	return f.SubtractFn.Call(a, b)
}
