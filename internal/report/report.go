// Package report renders harness run reports as coloured text, canonical
// JSON, YAML, JUnit XML, TeamCity service messages or IDE diagnostics.
//
// JSON output is deterministic: keys are sorted and strings NFC-normalized,
// so two identical runs produce byte-identical files (see MarshalCanonical).
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fixturekit/internal/harness"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatJUnit    Format = "junit"
	FormatTeamCity Format = "teamcity"
	FormatIDE      Format = "ide"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatJUnit, FormatTeamCity, FormatIDE}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be one of %v", s, Formats)
}

// Options tune rendering.
type Options struct {
	// Verbose adds expected/actual/diff detail to text output.
	Verbose bool

	// NoColor disables ANSI colours in text output.
	NoColor bool
}

// Write renders r to w in the given format.
func Write(w io.Writer, f Format, r *harness.Report, opts Options) error {
	switch f {
	case FormatText:
		return WriteText(w, r, opts)
	case FormatJSON:
		return WriteJSON(w, NewDocument(r))
	case FormatYAML:
		return WriteYAML(w, NewDocument(r))
	case FormatJUnit:
		return WriteJUnit(w, r)
	case FormatTeamCity:
		return WriteTeamCity(w, r)
	case FormatIDE:
		return WriteIDE(w, r)
	}
	return fmt.Errorf("invalid format %q", f)
}

// WriteJSON writes the document as indented canonical JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	data, err := MarshalCanonical(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to indent report: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// WriteYAML writes the document as YAML with two-space indentation.
func WriteYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
