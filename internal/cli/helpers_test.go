package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/testutil"
)

// cliEnv runs commands against one project directory with an empty
// environment, sequential run IDs and a deterministic clock.
type cliEnv struct {
	t      *testing.T
	dir    string
	suites []harness.Suite
	env    map[string]string
	ids    *testutil.SequentialIDGenerator
	clock  *testutil.DeterministicClock
}

func newCLIEnv(t *testing.T, suites ...harness.Suite) *cliEnv {
	t.Helper()
	return &cliEnv{
		t:      t,
		dir:    t.TempDir(),
		suites: suites,
		env:    map[string]string{},
		ids:    testutil.NewSequentialIDGenerator("run"),
		clock:  testutil.NewDeterministicClock(),
	}
}

func (e *cliEnv) lookupEnv(key string) (string, bool) {
	v, ok := e.env[key]
	return v, ok
}

// execute runs the root command with args after --dir, returning stdout,
// stderr and the command error.
func (e *cliEnv) execute(args ...string) (string, string, error) {
	e.t.Helper()
	cmd := newRootCommand(&RootOptions{
		Suites:    e.suites,
		LookupEnv: e.lookupEnv,
		IDs:       e.ids,
		Clock:     e.clock,
	})
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--dir", e.dir}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *cliEnv) historyPath() string {
	return filepath.Join(e.dir, ".fixturekit", "history.db")
}

// mixedSuite has one test per non-crashing outcome.
func mixedSuite() harness.Suite {
	return harness.Suite{
		Name: "demo",
		File: "demo.go",
		Tests: []harness.Test{
			{Name: "Passes", Body: func(t *harness.T) {
				t.AssertEqual(6, 2+4)
			}},
			{Name: "Fails", Body: func(t *harness.T) {
				t.AssertEqual(6, 2-4)
			}},
			{Name: "Ignored", Body: func(t *harness.T) {
				t.Ignore("not on this target")
			}},
		},
	}
}

func cleanSuite() harness.Suite {
	return harness.Suite{
		Name: "clean",
		File: "clean.go",
		Tests: []harness.Test{
			{Name: "One", Body: func(t *harness.T) { t.AssertTrue(true) }},
			{Name: "Two", Body: func(t *harness.T) { t.AssertEqual("a", "a") }},
		},
	}
}

func crashingSuite() harness.Suite {
	return harness.Suite{
		Name: "crash",
		File: "crash.go",
		Tests: []harness.Test{
			{Name: "NilDereference", Body: func(t *harness.T) {
				var p *int
				t.AssertEqual(0, *p)
			}},
			{Name: "After", Body: func(t *harness.T) {}},
		},
	}
}
