package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/report"
)

// RunRecord is one stored run without its per-test rows.
type RunRecord struct {
	ID       string
	Seq      int64
	Started  string
	Finished string
	Summary  harness.Summary
	Aborted  string
	Digest   string
}

// OK mirrors harness.Report.OK for a stored run.
func (r RunRecord) OK() bool {
	return r.Summary.Failed == 0 && r.Summary.Crashed == 0 && r.Summary.NotRun == 0
}

// ResultRecord is one stored test outcome. Outcome is OutcomeNotRun for
// cases the run never reached.
type ResultRecord struct {
	RunID    string
	Ordinal  int
	Suite    string
	Name     string
	Outcome  harness.Outcome
	Message  string
	File     string
	Line     int
	Duration int64
}

// ID returns "suite/name".
func (r ResultRecord) ID() string {
	return r.Suite + "/" + r.Name
}

const runColumns = `id, seq, started, finished, total, passed, failed, ignored, crashed, not_run, aborted, digest`

const resultColumns = `run_id, ordinal, suite, name, outcome, message, source_file, source_line, duration_ns`

// Runs returns the newest runs first. limit <= 0 returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY seq DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Run returns a single run by ID, or ErrNotFound.
func (s *Store) Run(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// LastRun returns the most recently stored run, or ErrNotFound if the
// store is empty.
func (s *Store) LastRun(ctx context.Context) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY seq DESC LIMIT 1")
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: store is empty", ErrNotFound)
	}
	return rec, err
}

// Results returns a run's rows in execution order, not-run cases last.
func (s *Store) Results(ctx context.Context, runID string) ([]ResultRecord, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}
	return s.queryResults(ctx,
		"SELECT "+resultColumns+" FROM results WHERE run_id = ? ORDER BY ordinal ASC", runID)
}

// FailedTests returns the IDs of every case in the run that did not end
// PASS or IGNORED, in execution order. This is the input for re-running
// failures.
func (s *Store) FailedTests(ctx context.Context, runID string) ([]string, error) {
	results, err := s.Results(ctx, runID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, r := range results {
		if !r.Outcome.OK() {
			ids = append(ids, r.ID())
		}
	}
	return ids, nil
}

// Document returns the canonical report stored with the run, after
// verifying it against the stored digest.
func (s *Store) Document(ctx context.Context, runID string) (*report.Document, error) {
	var raw, digest string
	err := s.db.QueryRowContext(ctx,
		"SELECT document, digest FROM runs WHERE id = ?", runID,
	).Scan(&raw, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query document %s: %w", runID, err)
	}

	doc, err := report.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("stored document %s: %w", runID, err)
	}
	got, err := report.Digest(doc)
	if err != nil {
		return nil, fmt.Errorf("stored document %s: %w", runID, err)
	}
	if got != digest {
		return nil, fmt.Errorf("stored document %s: digest mismatch: stored %s, computed %s", runID, digest, got)
	}
	return doc, nil
}

// CaseHistory returns the newest results for one "suite/name" across runs.
// limit <= 0 returns the full history.
func (s *Store) CaseHistory(ctx context.Context, id string, limit int) ([]ResultRecord, error) {
	suite, name := splitID(id)
	query := `
		SELECT r.run_id, r.ordinal, r.suite, r.name, r.outcome, r.message, r.source_file, r.source_line, r.duration_ns
		FROM results r
		JOIN runs ON runs.id = r.run_id
		WHERE r.suite = ? AND r.name = ?
		ORDER BY runs.seq DESC`
	args := []any{suite, name}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryResults(ctx, query, args...)
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var r ResultRecord
		var outcome string
		if err := rows.Scan(
			&r.RunID, &r.Ordinal, &r.Suite, &r.Name, &outcome,
			&r.Message, &r.File, &r.Line, &r.Duration,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Outcome = harness.Outcome(outcome)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	err := row.Scan(
		&rec.ID, &rec.Seq, &rec.Started, &rec.Finished,
		&rec.Summary.Total, &rec.Summary.Passed, &rec.Summary.Failed,
		&rec.Summary.Ignored, &rec.Summary.Crashed, &rec.Summary.NotRun,
		&rec.Aborted, &rec.Digest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, err
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	return rec, nil
}

// splitID splits "suite/name" at the first slash. An ID without a slash
// is all name.
func splitID(id string) (suite, name string) {
	if s, n, ok := strings.Cut(id, "/"); ok {
		return s, n
	}
	return "", id
}
