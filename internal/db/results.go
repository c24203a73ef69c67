package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jonathan/persona-authenticity/internal/types"
)

const insertRunSQL = `INSERT INTO authenticity_runs (id, persona_id, content_type, status, reason, attempts, text, report, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const listRunsSQL = `SELECT id, persona_id, content_type, status, reason, attempts, text, created_at
FROM authenticity_runs
WHERE ($1 = '' OR persona_id = $1)
ORDER BY created_at DESC
LIMIT $2`

// SaveResult stores a finished run and its full attempt history in one transaction.
// Exhausted runs store the best attempt's text and report.
func (db *DB) SaveResult(ctx context.Context, res *types.Result) error {
	if res == nil || len(res.History) == 0 {
		return fmt.Errorf("result has no attempts")
	}
	runID, err := uuid.Parse(res.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", res.RunID, err)
	}

	text, report := res.Text, res.Report
	if !res.Accepted() && res.Best != nil {
		report = res.Best.Report
		if res.Best.Candidate != nil {
			text = res.Best.Candidate.Text
		}
	}
	reportJSON, err := marshalNullable(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	rows, err := attemptRows(runID, res.History)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			db.logger.Error("failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	req := res.History[0].Request
	_, err = tx.Exec(ctx, insertRunSQL,
		runID, req.PersonaID, req.ContentType, string(res.Status), res.Reason,
		res.Attempts, text, reportJSON, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"authenticity_attempts"}, attemptColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy attempts: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("mismatch in copied attempts count: expected %d, got %d", len(rows), n)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	db.logger.Debug("result saved", zap.String("run_id", res.RunID), zap.Int("attempts", len(rows)))
	return nil
}

func attemptRows(runID uuid.UUID, history []types.Attempt) ([][]any, error) {
	rows := make([][]any, 0, len(history))
	for _, a := range history {
		reportJSON, err := marshalNullable(a.Report)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report of attempt %d: %w", a.Number, err)
		}
		promptJSON, err := json.Marshal(a.Prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal prompt of attempt %d: %w", a.Number, err)
		}
		candidate := ""
		if a.Candidate != nil {
			candidate = a.Candidate.Text
		}
		rows = append(rows, []any{
			uuid.New(), runID, a.Number, string(a.Decision), candidate, reportJSON, promptJSON,
			a.TransientRetries, a.GenerationError, a.EnhancementTried, a.EnhancementDegraded,
		})
	}
	return rows, nil
}

// marshalNullable returns nil for a nil report so the column stays NULL
func marshalNullable(r *types.ScoreReport) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// ListRuns returns the most recent runs, newest first. An empty personaID lists every persona.
func (db *DB) ListRuns(ctx context.Context, personaID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx, listRunsSQL, personaID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.PersonaID, &r.ContentType, &r.Status, &r.Reason, &r.Attempts, &r.Text, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
