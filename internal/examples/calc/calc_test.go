package calc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/ledger"
)

func TestAFunction_Native(t *testing.T) {
	assert.Equal(t, 6, AFunction(Native{}, 3, 5, 2))
	assert.Equal(t, -3, AFunction(Native{}, 0, 0, 3))
}

func TestSuite_AllPass(t *testing.T) {
	r := harness.NewRunner().Run(context.Background(), []harness.Suite{Suite()})

	require.Len(t, r.Results, 3)
	for _, res := range r.Results {
		assert.Equal(t, harness.OutcomePass, res.Outcome, "%s: %s", res.ID(), res.Message)
	}
	assert.Equal(t, 0, r.ExitCode())
}

// recorder is a minimal ledger.Reporter for driving FakeOps directly.
type recorder struct{ errs []error }

func (r *recorder) Fatal(err error) { r.errs = append(r.errs, err) }

func TestFakeOps_ConsumesInOrder(t *testing.T) {
	rec := &recorder{}
	l := ledger.New(rec)
	ops := NewFakeOps(l)

	ops.AddFn.ExpectAndReturn(1, 2, 3)
	ops.SubtractFn.ExpectAndReturn(3, 1, 2)

	assert.Equal(t, 2, AFunction(ops, 1, 2, 1))
	assert.NoError(t, l.Verify())
	assert.Empty(t, rec.errs)
}
