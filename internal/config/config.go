// Package config resolves run settings from defaults, a project config
// file, a .env file, FIXTUREKIT_* environment variables and, last,
// command-line flags.
//
// Config files are YAML (fixturekit.yaml, fixturekit.yml) or CUE
// (fixturekit.cue). Both are checked against the same embedded CUE
// schema, as are environment overrides, so an unknown key or a bad value
// is reported the same way wherever it came from.
package config

import (
	"time"
)

// Config holds all settings for a run.
type Config struct {
	// Format is the report format written to stdout.
	Format string
	// Verbose adds debug logs and expected/actual detail to text reports.
	Verbose bool
	// NoColor disables ANSI colours in text reports.
	NoColor bool

	// Isolate runs each test case in its own child process.
	Isolate bool
	// Timeout bounds each isolated test case; 0 means no limit.
	Timeout time.Duration
	// FailFast stops the run at the first FAIL or CRASHED case.
	FailFast bool
	// Filters are doublestar patterns over "suite/name".
	Filters []string

	// Output is an optional path for a json results file.
	Output string
	// History is the SQLite results store path. Empty disables history
	// unless HistoryDSN is set.
	History string
	// HistoryDSN selects a MySQL results store instead of SQLite.
	HistoryDSN string
	// Keep is how many runs the results store retains; 0 keeps all.
	Keep int

	// Source is the config file that was applied, if any.
	Source string
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Format:  DefaultFormat,
		Timeout: DefaultTimeout,
		History: DefaultHistory,
		Keep:    DefaultKeep,
	}
}

// overlay is one layer of settings. Nil fields leave the layer below
// untouched.
type overlay struct {
	Format     *string  `json:"format,omitempty" yaml:"format"`
	Verbose    *bool    `json:"verbose,omitempty" yaml:"verbose"`
	NoColor    *bool    `json:"no_color,omitempty" yaml:"no_color"`
	Isolate    *bool    `json:"isolate,omitempty" yaml:"isolate"`
	Timeout    *string  `json:"timeout,omitempty" yaml:"timeout"`
	FailFast   *bool    `json:"fail_fast,omitempty" yaml:"fail_fast"`
	Filters    []string `json:"filters,omitempty" yaml:"filters"`
	Output     *string  `json:"output,omitempty" yaml:"output"`
	History    *string  `json:"history,omitempty" yaml:"history"`
	HistoryDSN *string  `json:"history_dsn,omitempty" yaml:"history_dsn"`
	Keep       *int     `json:"keep,omitempty" yaml:"keep"`
}

// apply copies the set fields of o onto c. The overlay must already have
// passed schema validation.
func (c *Config) apply(o overlay) error {
	if o.Format != nil {
		c.Format = *o.Format
	}
	if o.Verbose != nil {
		c.Verbose = *o.Verbose
	}
	if o.NoColor != nil {
		c.NoColor = *o.NoColor
	}
	if o.Isolate != nil {
		c.Isolate = *o.Isolate
	}
	if o.Timeout != nil {
		d, err := time.ParseDuration(*o.Timeout)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	if o.FailFast != nil {
		c.FailFast = *o.FailFast
	}
	if o.Filters != nil {
		c.Filters = append([]string(nil), o.Filters...)
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	if o.History != nil {
		c.History = *o.History
	}
	if o.HistoryDSN != nil {
		c.HistoryDSN = *o.HistoryDSN
	}
	if o.Keep != nil {
		c.Keep = *o.Keep
	}
	return nil
}

// HistoryEnabled reports whether runs should be stored.
func (c *Config) HistoryEnabled() bool {
	return c.History != "" || c.HistoryDSN != ""
}
