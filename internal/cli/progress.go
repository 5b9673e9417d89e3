package cli

import (
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/roach88/fixturekit/internal/harness"
)

// progress is a harness.Observer drawing a progress bar with running
// pass/fail counts.
type progress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	passed int
	failed int
}

func newProgress(w io.Writer, total int) *progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &progress{bar: bar}
}

func (p *progress) TestStarted(harness.TestCase) {}

func (p *progress) TestFinished(res harness.TestResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Outcome.OK() {
		p.passed++
	} else {
		p.failed++
	}
	p.bar.Describe(describe(p.passed, p.failed))
	_ = p.bar.Add(1)
}

func describe(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[ok: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}
