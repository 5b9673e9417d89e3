package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Text(t *testing.T) {
	env := newCLIEnv(t, mixedSuite(), cleanSuite())

	stdout, _, err := env.execute("list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "demo/Passes"))
	assert.Contains(t, lines[0], "demo.go")
	assert.True(t, strings.HasPrefix(lines[4], "clean/Two"))
}

func TestList_JSON(t *testing.T) {
	env := newCLIEnv(t, mixedSuite())

	stdout, _, err := env.execute("--format", "json", "list")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []CaseInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, CaseInfo{ID: "demo/Fails", Suite: "demo", Name: "Fails", File: "demo.go"}, resp.Data[1])
}

func TestList_Filter(t *testing.T) {
	env := newCLIEnv(t, mixedSuite(), cleanSuite())

	stdout, _, err := env.execute("list", "--filter", "**/T*", "--filter", "demo/P*")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "demo/Passes"))
	assert.True(t, strings.HasPrefix(lines[1], "clean/Two"))
}

func TestList_FilterFromConfig(t *testing.T) {
	env := newCLIEnv(t, mixedSuite(), cleanSuite())
	env.writeFile("fixturekit.yaml", "filters:\n  - clean/*\n")

	stdout, _, err := env.execute("list")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "demo/")
	assert.Contains(t, stdout, "clean/One")
}

func TestList_InvalidFilter(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())

	stdout, _, err := env.execute("--format", "json", "list", "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
}
