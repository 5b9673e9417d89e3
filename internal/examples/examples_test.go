package examples

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/fixturekit/internal/harness"
)

func TestSuites_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Suites() {
		assert.NotEmpty(t, s.File, "suite %s has no source file", s.Name)
		for _, tc := range s.Cases() {
			assert.False(t, seen[tc.ID()], "duplicate case %s", tc.ID())
			seen[tc.ID()] = true
		}
	}
}

func TestSuites_PassingSuitesPass(t *testing.T) {
	r := harness.NewRunner(harness.WithFilter("calc/*", "usart_*/*", "temperature_*/*")).
		Run(context.Background(), Suites())

	assert.NotEmpty(t, r.Results)
	assert.Equal(t, 0, r.ExitCode(), "failed: %v", r.Failed())
}
