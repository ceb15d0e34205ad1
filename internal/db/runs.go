package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisRun is one recorded analysis result: which trial was analyzed, how,
// and the scalar metrics it produced. Scalars holds the serialized metric set
// as produced by the analysis, keyed by metric name.
type AnalysisRun struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"session_id"`
	TrialName      string          `json:"trial_name"`
	Kind           string          `json:"kind"`
	Leg            string          `json:"leg,omitempty"`
	NumCycles      int             `json:"num_cycles"`
	TreadmillSpeed float64         `json:"treadmill_speed,omitempty"`
	Scalars        json.RawMessage `json:"scalars"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Run kinds.
const (
	RunKindGait  = "gait"
	RunKindSquat = "squat"
)

// ErrRunNotFound is returned when no run exists with the requested id.
var ErrRunNotFound = errors.New("analysis run not found")

// RecordRun inserts a new analysis run and returns it with its generated id
// and timestamp filled in.
func (db *DB) RecordRun(ctx context.Context, run AnalysisRun) (AnalysisRun, error) {
	if run.Kind != RunKindGait && run.Kind != RunKindSquat {
		return AnalysisRun{}, fmt.Errorf("invalid run kind %q", run.Kind)
	}
	if len(run.Scalars) == 0 {
		run.Scalars = json.RawMessage("{}")
	}
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx, `
		INSERT INTO analysis_runs
			(id, session_id, trial_name, kind, leg, num_cycles, treadmill_speed, scalars, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.TrialName, run.Kind, run.Leg,
		run.NumCycles, run.TreadmillSpeed, string(run.Scalars), run.CreatedAt)
	if err != nil {
		return AnalysisRun{}, fmt.Errorf("insert analysis run: %w", err)
	}
	return run, nil
}

// Run returns a single analysis run by id.
func (db *DB) Run(ctx context.Context, id string) (AnalysisRun, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, session_id, trial_name, kind, leg, num_cycles, treadmill_speed, scalars, created_at
		FROM analysis_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AnalysisRun{}, ErrRunNotFound
	}
	if err != nil {
		return AnalysisRun{}, fmt.Errorf("query analysis run: %w", err)
	}
	return run, nil
}

// Runs returns recorded runs, newest first. An empty sessionID matches all
// sessions. limit <= 0 means no limit.
func (db *DB) Runs(ctx context.Context, sessionID string, limit int) ([]AnalysisRun, error) {
	query := `
		SELECT id, session_id, trial_name, kind, leg, num_cycles, treadmill_speed, scalars, created_at
		FROM analysis_runs`
	var args []any
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a recorded run by id.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM analysis_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete analysis run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete analysis run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (AnalysisRun, error) {
	var run AnalysisRun
	var scalars string
	err := row.Scan(&run.ID, &run.SessionID, &run.TrialName, &run.Kind, &run.Leg,
		&run.NumCycles, &run.TreadmillSpeed, &scalars, &run.CreatedAt)
	if err != nil {
		return AnalysisRun{}, err
	}
	run.Scalars = json.RawMessage(scalars)
	return run, nil
}
