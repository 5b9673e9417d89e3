package temperature

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fixturekit/internal/harness"
)

func TestCalculate(t *testing.T) {
	assert.InDelta(t, 25.0, Calculate(1000), 0.01)
	assert.InDelta(t, 68.317, Calculate(2985), 0.01)
	assert.InDelta(t, -19.96, Calculate(3), 0.01)
	assert.True(t, math.IsInf(Calculate(0), -1))
}

func TestFilter(t *testing.T) {
	f := NewFilter()
	assert.True(t, math.IsInf(f.Celsius(), -1))

	f.Process(20)
	f.Process(24)
	assert.InDelta(t, 21.0, f.Celsius(), 1e-9)

	f.Process(math.Inf(1))
	assert.True(t, math.IsInf(f.Celsius(), -1))

	f.Process(18)
	assert.InDelta(t, 18.0, f.Celsius(), 1e-9)
}

func TestSuites_AllPass(t *testing.T) {
	r := harness.NewRunner().Run(context.Background(), []harness.Suite{CalculatorSuite(), FilterSuite()})

	require.Len(t, r.Results, 6)
	for _, res := range r.Results {
		assert.Equal(t, harness.OutcomePass, res.Outcome, "%s: %s", res.ID(), res.Message)
	}
}

func TestCalculatorSuite_ToleranceFailureMessage(t *testing.T) {
	suite := harness.Suite{
		Name: "temperature_calculator",
		Tests: []harness.Test{{Name: "OffByOneDegree", Body: func(ht *harness.T) {
			ht.AssertFloatWithin(tolerance, 26.0, Calculate(1000))
		}}},
	}

	res := harness.NewRunner().Run(context.Background(), []harness.Suite{suite}).Results[0]
	assert.Equal(t, harness.OutcomeFail, res.Outcome)
	assert.Contains(t, res.Message, "Expected 26 +/- 0.01 Was 24.9999")
}
