package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/testutil"
)

// mysqlDSNEnv names the DSN used for the optional MySQL round-trip tests.
const mysqlDSNEnv = "FIXTUREKIT_TEST_MYSQL_DSN"

// setupTestStore opens a fresh SQLite store with sequential run IDs.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"),
		WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// failingRun is a run with one of each outcome plus a case it never reached.
func failingRun() *harness.Report {
	return &harness.Report{
		Started:  testutil.Epoch,
		Finished: testutil.Epoch.Add(5 * time.Millisecond),
		Results: []harness.TestResult{
			{Suite: "calc", Name: "Add", File: "calc.go", Outcome: harness.OutcomePass, Duration: time.Millisecond},
			{
				Suite: "calc", Name: "Subtract", File: "calc.go", Line: 42,
				Outcome: harness.OutcomeFail, Message: "Expected 6 Was 0", Duration: 2 * time.Millisecond,
				Assertions: []harness.AssertionResult{{
					Test: "calc/Subtract", Phase: harness.PhaseBody,
					Expected: "6", Actual: "0", Message: "Expected 6 Was 0", File: "calc.go", Line: 42,
				}},
			},
			{Suite: "faults", Name: "Later", Outcome: harness.OutcomeIgnored, Message: "not yet"},
			{Suite: "faults", Name: "Boom", Outcome: harness.OutcomeCrashed, Message: "bus fault"},
		},
		NotRun:  []string{"faults/Skipped"},
		Aborted: "faults/Boom crashed: bus fault",
	}
}

// passingRun contains only successful outcomes.
func passingRun() *harness.Report {
	return &harness.Report{
		Started:  testutil.Epoch,
		Finished: testutil.Epoch.Add(time.Millisecond),
		Results: []harness.TestResult{
			{Suite: "calc", Name: "Add", Outcome: harness.OutcomePass},
			{Suite: "calc", Name: "Subtract", Outcome: harness.OutcomePass},
		},
	}
}
