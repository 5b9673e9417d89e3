// Package examples registers the worked example suites that ship with the
// fixturekit binary.
package examples

import (
	"github.com/roach88/fixturekit/internal/examples/calc"
	"github.com/roach88/fixturekit/internal/examples/faults"
	"github.com/roach88/fixturekit/internal/examples/temperature"
	"github.com/roach88/fixturekit/internal/examples/usart"
	"github.com/roach88/fixturekit/internal/harness"
)

// Suites returns every example suite in run order. The faults suite comes
// last so its in-process crash only cuts off its own remaining cases.
func Suites() []harness.Suite {
	return []harness.Suite{
		calc.Suite(),
		usart.ConductorSuite(),
		usart.BaudRateSuite(),
		temperature.CalculatorSuite(),
		temperature.FilterSuite(),
		faults.Suite(),
	}
}
