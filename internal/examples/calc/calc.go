// Package calc is the smallest worked example: a function built on two
// dependencies that tests replace with ledger-backed fakes.
package calc

// Ops is the arithmetic AFunction depends on.
type Ops interface {
	Add(a, b int) int
	Subtract(a, b int) int
}

// AFunction computes (a + b) - c through ops.
func AFunction(ops Ops, a, b, c int) int {
	return ops.Subtract(ops.Add(a, b), c)
}

// Native is the real implementation of Ops.
type Native struct{}

func (Native) Add(a, b int) int      { return a + b }
func (Native) Subtract(a, b int) int { return a - b }
