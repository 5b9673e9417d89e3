package temperature

import (
	"math"
	"runtime"

	"github.com/roach88/fixturekit/internal/harness"
)

const tolerance = 0.01

// CalculatorSuite returns the conversion tests.
func CalculatorSuite() harness.Suite {
	_, file, _, _ := runtime.Caller(0)

	return harness.Suite{
		Name: "temperature_calculator",
		File: file,
		Tests: []harness.Test{
			{Name: "ShouldCalculateTemperatureFromMillivolts", Body: func(t *harness.T) {
				t.AssertFloatWithin(tolerance, 25.0, Calculate(1000))
				t.AssertFloatWithin(tolerance, 68.317, Calculate(2985))
				t.AssertFloatWithin(tolerance, -19.96, Calculate(3))
			}},
			{Name: "ShouldReturnNegativeInfinityWhen0MillivoltsInput", Body: func(t *harness.T) {
				t.AssertTrue(math.IsInf(Calculate(0), -1), "0 mV is an open circuit")
			}},
		},
	}
}

// FilterSuite returns the smoothing filter tests. Every case gets a fresh
// filter from setUp.
func FilterSuite() harness.Suite {
	var filter *Filter
	_, file, _, _ := runtime.Caller(0)

	return harness.Suite{
		Name: "temperature_filter",
		File: file,
		SetUp: func(t *harness.T) {
			filter = NewFilter()
		},
		Tests: []harness.Test{
			{Name: "ShouldInitializeToNegativeInfinity", Body: func(t *harness.T) {
				t.AssertTrue(math.IsInf(filter.Celsius(), -1))
			}},
			{Name: "ShouldTakeFirstReadingAsIs", Body: func(t *harness.T) {
				filter.Process(21.5)
				t.AssertFloatWithin(tolerance, 21.5, filter.Celsius())
			}},
			{Name: "ShouldAverageSubsequentReadings", Body: func(t *harness.T) {
				filter.Process(20.0)
				filter.Process(24.0)
				t.AssertFloatWithin(tolerance, 21.0, filter.Celsius())
				filter.Process(25.0)
				t.AssertFloatWithin(tolerance, 22.0, filter.Celsius())
			}},
			{Name: "ShouldRestartAfterInvalidReading", Body: func(t *harness.T) {
				filter.Process(20.0)
				filter.Process(math.NaN())
				t.AssertTrue(math.IsInf(filter.Celsius(), -1))
				filter.Process(30.0)
				t.AssertFloatWithin(tolerance, 30.0, filter.Celsius())
			}},
		},
	}
}
