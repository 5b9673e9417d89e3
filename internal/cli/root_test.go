package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "fixturekit", cmd.Use)
	assert.Contains(t, cmd.Long, "expectation ledger")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	commands := []string{"run", "list", "history", "failures"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(nil)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dirFlag := cmd.PersistentFlags().Lookup("dir")
	require.NotNil(t, dirFlag)
	assert.Equal(t, "C", dirFlag.Shorthand)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand(nil)
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	historyFlag := runCmd.Flags().Lookup("history")
	require.NotNil(t, historyFlag)
	assert.Equal(t, ".fixturekit/history.db", historyFlag.DefValue)

	keepFlag := runCmd.Flags().Lookup("keep")
	require.NotNil(t, keepFlag)
	assert.Equal(t, "50", keepFlag.DefValue)

	timeoutFlag := runCmd.Flags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, "10s", timeoutFlag.DefValue)

	outputFlag := runCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestFailuresCommandFlags(t *testing.T) {
	cmd := NewRootCommand(nil)
	failuresCmd, _, err := cmd.Find([]string{"failures"})
	require.NoError(t, err)

	plainFlag := failuresCmd.Flags().Lookup("plain")
	require.NotNil(t, plainFlag)
	assert.Equal(t, "false", plainFlag.DefValue)
}

func TestResolveConfig_FileSetsFormat(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())
	env.writeFile("fixturekit.yaml", "format: json\n")

	stdout, _, err := env.execute("list")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestResolveConfig_FlagBeatsFileAndEnv(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())
	env.writeFile("fixturekit.yaml", "format: json\n")
	env.env["FIXTUREKIT_FORMAT"] = "yaml"

	stdout, _, err := env.execute("--format", "text", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "clean/One")
	assert.NotContains(t, stdout, `"status"`)
}

func TestResolveConfig_EnvBeatsFile(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())
	env.writeFile("fixturekit.yaml", "format: text\n")
	env.env["FIXTUREKIT_FORMAT"] = "json"

	stdout, _, err := env.execute("list")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"status":"ok"`)
}

func TestResolveConfig_InvalidFormat(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())

	_, _, err := env.execute("--format", "xml", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid --format")
}

func TestResolveConfig_InvalidConfigFile(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())
	env.writeFile("fixturekit.yaml", "keep: -1\n")

	_, _, err := env.execute("list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestResolveConfig_HistoryRelativeToDir(t *testing.T) {
	env := newCLIEnv(t, cleanSuite())
	env.writeFile("fixturekit.yaml", "history: results/runs.db\n")

	_, _, err := env.execute("run")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.dir, "results", "runs.db"))
}

func TestUnknownCommandIsCommandError(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.execute("frobnicate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
