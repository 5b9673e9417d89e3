package harness

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runBody runs body as the only phase of a throwaway case.
func runBody(body TestFunc) TestResult {
	return NewRunner().RunTestCase(TestCase{Suite: "unit", Name: "case", File: "unit_test.go", Body: body})
}

func currentLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

func TestAssertEqual_Pass(t *testing.T) {
	res := runBody(func(ht *T) {
		ht.AssertEqual(6, 6)
		ht.AssertEqual("abc", "abc")
		ht.AssertEqual([]int{1, 2}, []int{1, 2})
	})

	assert.Equal(t, OutcomePass, res.Outcome)
	require.Len(t, res.Assertions, 3)
	for _, a := range res.Assertions {
		assert.True(t, a.Passed)
		assert.Equal(t, "unit/case", a.Test)
		assert.Equal(t, PhaseBody, a.Phase)
	}
	assert.Empty(t, res.Failures())
}

func TestAssertEqual_FailureStopsBody(t *testing.T) {
	var line int
	reached := false
	res := runBody(func(ht *T) {
		line = currentLine() + 1
		ht.AssertEqual(6, 8)
		reached = true
	})

	assert.False(t, reached, "body must stop at the first failure")
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Equal(t, "Expected 6 Was 8", res.Message)
	assert.Equal(t, line, res.Line)
	assert.Equal(t, "assertions_test.go", filepath.Base(res.File))

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "6", failures[0].Expected)
	assert.Equal(t, "8", failures[0].Actual)
}

func TestAssertEqual_CallerMessage(t *testing.T) {
	res := runBody(func(ht *T) {
		ht.AssertEqual("a", "b", "checksum of block %d", 3)
	})

	assert.Equal(t, `Expected "a" Was "b". checksum of block 3`, res.Message)
}

func TestAssertEqual_CompositeDiff(t *testing.T) {
	type frame struct {
		ID      int
		Payload []byte
	}
	res := runBody(func(ht *T) {
		ht.AssertEqual(frame{ID: 1, Payload: []byte{1, 2}}, frame{ID: 1, Payload: []byte{1, 3}})
	})

	require.Equal(t, OutcomeFail, res.Outcome)
	f := res.Failures()[0]
	assert.Contains(t, f.Diff, "--- Expected")
	assert.Contains(t, f.Diff, "+++ Actual")
	assert.Contains(t, f.Expected, "Payload")
}

func TestAssertEqual_TypesMatter(t *testing.T) {
	res := runBody(func(ht *T) {
		ht.AssertEqual(int32(1), int64(1))
	})
	assert.Equal(t, OutcomeFail, res.Outcome)
}

func TestAssertNotEqual(t *testing.T) {
	assert.Equal(t, OutcomePass, runBody(func(ht *T) { ht.AssertNotEqual(1, 2) }).Outcome)

	res := runBody(func(ht *T) { ht.AssertNotEqual(1, 1) })
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Equal(t, "Expected Not-Equal Was 1", res.Message)
}

func TestAssertTrueFalse(t *testing.T) {
	assert.Equal(t, OutcomePass, runBody(func(ht *T) {
		ht.AssertTrue(true)
		ht.AssertFalse(false)
	}).Outcome)

	res := runBody(func(ht *T) { ht.AssertTrue(false) })
	assert.Equal(t, "Expected TRUE Was FALSE", res.Message)

	res = runBody(func(ht *T) { ht.AssertFalse(true, "flag") })
	assert.Equal(t, "Expected FALSE Was TRUE. flag", res.Message)
}

func TestAssertFloatWithin(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
		expected  float64
		actual    float64
		pass      bool
	}{
		{"exact", 0.01, 25.0, 25.0, true},
		{"inside", 0.01, 25.0, 25.005, true},
		{"boundary", 0.5, 1.0, 1.5, true},
		{"outside", 0.01, 25.0, 25.02, false},
		{"negative tolerance", -0.01, 25.0, 25.005, true},
		{"equal +inf", 0.01, math.Inf(1), math.Inf(1), true},
		{"equal -inf", 0.01, math.Inf(-1), math.Inf(-1), true},
		{"opposite inf", 0.01, math.Inf(1), math.Inf(-1), false},
		{"inf vs finite", 1e300, math.Inf(-1), -1e10, false},
		{"nan actual", 0.01, 1.0, math.NaN(), false},
		{"nan both", 0.01, math.NaN(), math.NaN(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runBody(func(ht *T) {
				ht.AssertFloatWithin(tt.tolerance, tt.expected, tt.actual)
			})
			if tt.pass {
				assert.Equal(t, OutcomePass, res.Outcome)
			} else {
				assert.Equal(t, OutcomeFail, res.Outcome)
			}
		})
	}
}

func TestAssertFloatWithin_Message(t *testing.T) {
	res := runBody(func(ht *T) { ht.AssertFloatWithin(0.01, 25.0, 26.5) })
	assert.Equal(t, "Expected 25 +/- 0.01 Was 26.5", res.Message)
}

func TestAssertNil(t *testing.T) {
	var typedNil *int
	var nilMap map[string]int
	assert.Equal(t, OutcomePass, runBody(func(ht *T) {
		ht.AssertNil(nil)
		ht.AssertNil(typedNil)
		ht.AssertNil(nilMap)
		ht.AssertNotNil(1)
		ht.AssertNotNil(&struct{}{})
	}).Outcome)

	res := runBody(func(ht *T) { ht.AssertNil(5) })
	assert.Equal(t, "Expected NULL Was 5", res.Message)

	res = runBody(func(ht *T) { ht.AssertNotNil(typedNil) })
	assert.Equal(t, "Expected Non-NULL", res.Message)
}

func TestFail(t *testing.T) {
	res := runBody(func(ht *T) { ht.Fail() })
	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Equal(t, "Failed", res.Message)

	res = runBody(func(ht *T) { ht.Fail("buffer overflow at %d", 16) })
	assert.Equal(t, "buffer overflow at 16", res.Message)
}

func TestIgnore(t *testing.T) {
	reached := false
	res := runBody(func(ht *T) {
		ht.Ignore("not on this target")
		reached = true
	})

	assert.False(t, reached)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Equal(t, "not on this target", res.Message)
	assert.True(t, res.Outcome.OK())
}

func TestCrash(t *testing.T) {
	res := runBody(func(ht *T) { ht.Crash("watchdog reset") })

	assert.Equal(t, OutcomeCrashed, res.Outcome)
	assert.Equal(t, "watchdog reset", res.Message)
	assert.NotEmpty(t, res.Stack)
}

func TestNilDereferenceCrashes(t *testing.T) {
	res := runBody(func(ht *T) {
		var p *struct{ n int }
		ht.AssertEqual(0, p.n)
	})

	assert.Equal(t, OutcomeCrashed, res.Outcome)
	assert.Contains(t, res.Message, "nil pointer dereference")
}

func TestOrdinaryPanicFails(t *testing.T) {
	var line int
	res := runBody(func(ht *T) {
		s := []int{1}
		i := 3
		line = currentLine() + 1
		_ = s[i]
	})

	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Contains(t, res.Message, "panic: runtime error: index out of range")
	assert.Equal(t, line, res.Line)
}

func assertPositive(ht *T, n int) {
	ht.Helper()
	ht.AssertTrue(n > 0, "want positive, got %d", n)
}

func TestHelperFramesAreSkipped(t *testing.T) {
	var line int
	res := runBody(func(ht *T) {
		line = currentLine() + 1
		assertPositive(ht, -1)
	})

	assert.Equal(t, OutcomeFail, res.Outcome)
	assert.Equal(t, line, res.Line)
}

func TestRenderValue(t *testing.T) {
	assert.Equal(t, "nil", renderValue(nil))
	assert.Equal(t, `"x"`, renderValue("x"))
	assert.Equal(t, "3.5", renderValue(3.5))
	assert.Equal(t, "true", renderValue(true))
	assert.Contains(t, renderValue([]int{1, 2}), "(int) 1")
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "", formatMessage())
	assert.Equal(t, "plain", formatMessage("plain"))
	assert.Equal(t, "n=2", formatMessage("n=%d", 2))
	assert.Equal(t, "42", formatMessage(42))
	assert.Equal(t, "[7 retries]", formatMessage(7, "retries"))
	assert.Equal(t, "[{Port:3} true]", formatMessage(struct{ Port int }{3}, true))
}

func TestAssertTrue_FormattedMessage(t *testing.T) {
	res := runBody(func(ht *T) {
		ht.AssertTrue(false, "register %#x not set after %d polls", 0x2c, 4)
	})

	assert.Equal(t, "Expected TRUE Was FALSE. register 0x2c not set after 4 polls", res.Message)
}
