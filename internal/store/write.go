package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/fixturekit/internal/harness"
	"github.com/roach88/fixturekit/internal/report"
)

// OutcomeNotRun marks result rows for cases the run never reached.
const OutcomeNotRun harness.Outcome = "NOT_RUN"

// SaveRun stores a finished run and its per-test results in one
// transaction. A report without a RunID gets one from the store's
// IDGenerator, written back into r.RunID.
//
// Runs are ordered by seq (MAX(seq)+1 at insert), never by timestamp.
// Returns ErrDuplicateRun if the run ID is already stored.
func (s *Store) SaveRun(ctx context.Context, r *harness.Report) (RunRecord, error) {
	if r.RunID == "" {
		r.RunID = s.ids.Generate()
	}
	if err := r.Check(); err != nil {
		return RunRecord{}, fmt.Errorf("refusing to store inconsistent run %s: %w", r.RunID, err)
	}

	doc := report.NewDocument(r)
	canonical, err := report.MarshalCanonical(doc)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to encode run %s: %w", r.RunID, err)
	}
	digest, err := report.Digest(doc)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to digest run %s: %w", r.RunID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM runs").Scan(&seq); err != nil {
		return RunRecord{}, fmt.Errorf("next seq: %w", err)
	}

	rec := RunRecord{
		ID:       r.RunID,
		Seq:      seq,
		Started:  doc.Started,
		Finished: doc.Finished,
		Summary:  doc.Summary,
		Aborted:  r.Aborted,
		Digest:   digest,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, started, finished, total, passed, failed, ignored, crashed, not_run, aborted, digest, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Seq, rec.Started, rec.Finished,
		rec.Summary.Total, rec.Summary.Passed, rec.Summary.Failed,
		rec.Summary.Ignored, rec.Summary.Crashed, rec.Summary.NotRun,
		rec.Aborted, rec.Digest, string(canonical),
	)
	if err != nil {
		if isDuplicate(err) {
			return RunRecord{}, fmt.Errorf("%w: %s", ErrDuplicateRun, rec.ID)
		}
		return RunRecord{}, fmt.Errorf("insert run %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, ordinal, suite, name, outcome, message, source_file, source_line, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return RunRecord{}, fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	ordinal := 0
	for _, res := range r.Results {
		ordinal++
		if _, err := stmt.ExecContext(ctx,
			rec.ID, ordinal, res.Suite, res.Name, string(res.Outcome),
			res.Message, res.File, res.Line, int64(res.Duration),
		); err != nil {
			return RunRecord{}, fmt.Errorf("insert result %s: %w", res.ID(), err)
		}
	}
	for _, id := range r.NotRun {
		ordinal++
		suite, name := splitID(id)
		if _, err := stmt.ExecContext(ctx,
			rec.ID, ordinal, suite, name, string(OutcomeNotRun), "", "", 0, 0,
		); err != nil {
			return RunRecord{}, fmt.Errorf("insert result %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("commit run %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Prune deletes all but the newest keep runs. Result rows go with them via
// ON DELETE CASCADE. Returns the number of runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	var cutoff sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT seq FROM runs ORDER BY seq DESC LIMIT 1 OFFSET ?", keep,
	).Scan(&cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find prune cutoff: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE seq <= ?", cutoff.Int64)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return n, nil
}
