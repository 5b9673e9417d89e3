package harness

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ChildEnv names the environment variable that tells a re-executed binary
// which single case to run.
const ChildEnv = "FIXTUREKIT_CHILD_CASE"

// resultMarker prefixes the one stdout line carrying the child's result.
const resultMarker = "@@fixturekit-result@@ "

// maxStderr bounds how much child stderr is kept for crash messages.
const maxStderr = 16 << 10

// Isolator runs each case in a fresh child process, so a fault that kills
// the process only crashes that case.
//
// The child is Path invoked with Args and ChildEnv set; it must call
// RunChild early in main (or in a helper test) and exit with its result.
type Isolator struct {
	Path string
	Args []string
	Env  []string

	// Timeout bounds each child; zero means no limit.
	Timeout time.Duration

	// Output receives the child's non-result stdout and its stderr.
	// Nil discards them.
	Output io.Writer
}

// SelfIsolator re-executes the running binary.
func SelfIsolator(timeout time.Duration) (*Isolator, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return &Isolator{Path: exe, Timeout: timeout}, nil
}

// Run executes tc in a child process and returns its result.
// A child that dies without reporting, or overruns Timeout, yields a
// CRASHED result. The error is non-nil only if the child could not be
// started or ctx was cancelled.
func (iso *Isolator) Run(ctx context.Context, tc TestCase) (TestResult, error) {
	runCtx := ctx
	if iso.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, iso.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, iso.Path, iso.Args...)
	cmd.Env = append(append(os.Environ(), iso.Env...), ChildEnv+"="+tc.ID())
	cmd.WaitDelay = time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to open child stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to open child stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return TestResult{}, fmt.Errorf("failed to start child for %s: %w", tc.ID(), err)
	}

	out := iso.Output
	if out == nil {
		out = io.Discard
	}
	var outMu sync.Mutex
	forward := func(line string) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintln(out, line)
	}

	var (
		result *TestResult
		tail   tailBuffer
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		result, err = readResult(stdout, forward)
		return err
	})
	g.Go(func() error {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			line := sc.Text()
			tail.WriteLine(line)
			forward(line)
		}
		return drain(stderr, sc.Err())
	})
	readErr := g.Wait()
	waitErr := cmd.Wait()

	if result != nil {
		return *result, nil
	}
	if ctx.Err() != nil {
		return TestResult{}, ctx.Err()
	}

	crashed := TestResult{
		Suite:   tc.Suite,
		Name:    tc.Name,
		File:    tc.File,
		Outcome: OutcomeCrashed,
		Stack:   tail.String(),
	}
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		crashed.Message = fmt.Sprintf("timed out after %s", iso.Timeout)
	case waitErr != nil:
		crashed.Message = fmt.Sprintf("child process failed (%v)", waitErr)
		if reason := tail.Reason(); reason != "" {
			crashed.Message += ": " + reason
		}
	case readErr != nil:
		crashed.Message = readErr.Error()
	default:
		crashed.Message = "child process exited without reporting a result"
	}
	return crashed, nil
}

// readResult scans child stdout for the result line and forwards every
// other line. The reader is always consumed to EOF so the child never blocks
// on a full pipe.
func readResult(r io.Reader, forward func(string)) (*TestResult, error) {
	var result *TestResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 16<<20)
	for sc.Scan() {
		line := sc.Text()
		if payload, ok := strings.CutPrefix(line, resultMarker); ok {
			var res TestResult
			if err := json.Unmarshal([]byte(payload), &res); err != nil {
				return nil, drain(r, fmt.Errorf("failed to decode child result: %w", err))
			}
			result = &res
			continue
		}
		forward(line)
	}
	return result, drain(r, sc.Err())
}

// drain discards the rest of r after a read error and returns err.
func drain(r io.Reader, err error) error {
	if err != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	return err
}

// ChildCase returns the case ID this process was asked to run, or "".
func ChildCase() string {
	return os.Getenv(ChildEnv)
}

// RunChild runs the case named by ChildEnv in-process, writes the result
// line to w and returns the exit code for the child process. Unknown IDs
// exit 2 without a result line.
func RunChild(suites []Suite, w io.Writer, opts ...Option) int {
	id := ChildCase()
	r := NewRunner(opts...)
	for _, s := range suites {
		for _, tc := range s.Cases() {
			if tc.ID() != id {
				continue
			}
			res := r.RunTestCase(tc)
			payload, err := json.Marshal(res)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
				return 2
			}
			fmt.Fprintf(w, "%s%s\n", resultMarker, payload)
			if res.Outcome.OK() {
				return 0
			}
			return 1
		}
	}
	fmt.Fprintf(os.Stderr, "unknown test case %q\n", id)
	return 2
}

// tailBuffer keeps the last maxStderr bytes of line-oriented output.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *tailBuffer) WriteLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(line)
	b.buf.WriteByte('\n')
	if over := b.buf.Len() - maxStderr; over > 0 {
		b.buf.Next(over)
	}
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reason picks the runtime's panic or fatal error line out of the tail.
func (b *tailBuffer) Reason() string {
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.HasPrefix(line, "panic: ") || strings.HasPrefix(line, "fatal error: ") {
			return line
		}
	}
	return ""
}
