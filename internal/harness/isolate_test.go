package harness

import (
	"bufio"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// childSuites are the cases the re-executed test binary knows about.
func childSuites() []Suite {
	return []Suite{{
		Name: "child",
		File: "isolate_test.go",
		Tests: []Test{
			{Name: "Passes", Body: func(ht *T) { ht.AssertEqual(2, 1+1) }},
			{Name: "Fails", Body: func(ht *T) { ht.AssertEqual(1, 2) }},
			{Name: "GoroutineFault", Body: func(ht *T) {
				// A fault on another goroutine cannot be recovered and
				// kills the whole process.
				done := make(chan struct{})
				go func() {
					var p *int
					*p = 1
					close(done)
				}()
				<-done
			}},
			{Name: "Crashes", Body: func(ht *T) { ht.Crash("stack overflow") }},
			{Name: "Hangs", Body: func(*T) { time.Sleep(time.Minute) }},
			{Name: "AfterFault", Body: func(ht *T) { ht.AssertTrue(true) }},
		},
	}}
}

// TestHelperChild is the entry point of the isolation child process.
func TestHelperChild(t *testing.T) {
	if ChildCase() == "" {
		t.Skip("only runs as an isolation child")
	}
	os.Exit(RunChild(childSuites(), os.Stdout))
}

func helperIsolator(timeout time.Duration) *Isolator {
	return &Isolator{
		Path:    os.Args[0],
		Args:    []string{"-test.run=^TestHelperChild$"},
		Timeout: timeout,
	}
}

func TestIsolator_RunContinuesPastProcessDeath(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}

	r := NewRunner(
		WithIsolation(helperIsolator(30*time.Second)),
		WithFilter("child/Passes", "child/Fails", "child/GoroutineFault", "child/Crashes", "child/AfterFault"),
	)
	report := r.Run(context.Background(), childSuites())

	require.Len(t, report.Results, 5)
	got := map[string]TestResult{}
	for _, res := range report.Results {
		assert.True(t, res.Isolated)
		got[res.Name] = res
	}

	assert.Equal(t, OutcomePass, got["Passes"].Outcome)

	assert.Equal(t, OutcomeFail, got["Fails"].Outcome)
	assert.Equal(t, "Expected 1 Was 2", got["Fails"].Message)

	assert.Equal(t, OutcomeCrashed, got["GoroutineFault"].Outcome)
	assert.Contains(t, got["GoroutineFault"].Message, "nil pointer dereference")

	assert.Equal(t, OutcomeCrashed, got["Crashes"].Outcome)
	assert.Equal(t, "stack overflow", got["Crashes"].Message)

	assert.Equal(t, OutcomePass, got["AfterFault"].Outcome)
	assert.Empty(t, report.NotRun)
	assert.Equal(t, 1, report.ExitCode())
}

func TestIsolator_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}

	tc := childSuites()[0].Cases()[4]
	require.Equal(t, "child/Hangs", tc.ID())

	res, err := helperIsolator(500*time.Millisecond).Run(context.Background(), tc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCrashed, res.Outcome)
	assert.Equal(t, "timed out after 500ms", res.Message)
}

func TestIsolator_CancelledContext(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	tc := childSuites()[0].Cases()[4]
	_, err := helperIsolator(0).Run(ctx, tc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_CancelDuringIsolatedCase(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	r := NewRunner(
		WithIsolation(helperIsolator(0)),
		WithFilter("child/Hangs", "child/AfterFault"),
	)
	report := r.Run(ctx, childSuites())

	assert.Empty(t, report.Results)
	assert.Equal(t, []string{"child/Hangs", "child/AfterFault"}, report.NotRun)
	assert.Equal(t, "interrupted: context canceled", report.Aborted)
	assert.Equal(t, 0, report.Summary().Crashed)
	assert.Equal(t, 1, report.ExitCode())
}

func TestIsolator_StartFailure(t *testing.T) {
	iso := &Isolator{Path: "/nonexistent/fixturekit-binary"}
	_, err := iso.Run(context.Background(), TestCase{Suite: "s", Name: "t"})
	assert.ErrorContains(t, err, "failed to start child for s/t")
}

func TestReadResult_ForwardsOutputAndDecodesResult(t *testing.T) {
	var lines []string
	r := strings.NewReader("booting\n" + resultMarker + `{"suite":"calc","name":"Add","outcome":"PASS"}` + "\nbye\n")

	res, err := readResult(r, func(line string) { lines = append(lines, line) })
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "calc/Add", res.ID())
	assert.Equal(t, OutcomePass, res.Outcome)
	assert.Equal(t, []string{"booting", "bye"}, lines)
}

func TestReadResult_DrainsAfterOverlongLine(t *testing.T) {
	r := strings.NewReader(strings.Repeat("x", 17<<20) + "\n" + strings.Repeat("more output\n", 1000))

	res, err := readResult(r, func(string) {})
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Nil(t, res)
	assert.Zero(t, r.Len(), "unread output would block the child")
}

func TestReadResult_DrainsAfterBadResultLine(t *testing.T) {
	r := strings.NewReader(resultMarker + "{not json\n" + strings.Repeat("more output\n", 1000))

	_, err := readResult(r, func(string) {})
	assert.ErrorContains(t, err, "failed to decode child result")
	assert.Zero(t, r.Len())
}

func TestTailBuffer_Reason(t *testing.T) {
	var b tailBuffer
	b.WriteLine("some log output")
	b.WriteLine("panic: runtime error: invalid memory address or nil pointer dereference")
	b.WriteLine("[signal SIGSEGV: segmentation violation]")

	assert.Equal(t, "panic: runtime error: invalid memory address or nil pointer dereference", b.Reason())
}

func TestTailBuffer_Bounded(t *testing.T) {
	var b tailBuffer
	line := string(make([]byte, 1024))
	for range 64 {
		b.WriteLine(line)
	}
	assert.LessOrEqual(t, len(b.String()), maxStderr)
}
