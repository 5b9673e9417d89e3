package config

import "time"

const (
	// DefaultFormat is the report format written to stdout.
	DefaultFormat = "text"
	// DefaultTimeout bounds each isolated test case.
	DefaultTimeout = 10 * time.Second
	// DefaultHistory is the SQLite results store, relative to the project.
	DefaultHistory = ".fixturekit/history.db"
	// DefaultKeep is how many runs the results store retains.
	DefaultKeep = 50
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "FIXTUREKIT_"
)

// FileNames are the config files looked up in the project directory, in
// priority order. The first one found wins.
var FileNames = []string{
	"fixturekit.yaml",
	"fixturekit.yml",
	"fixturekit.cue",
}
