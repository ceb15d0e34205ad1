package api

import (
	"encoding/json"

	"github.com/gaitlab/stride.report/internal/db"
	"github.com/gaitlab/stride.report/internal/report"
)

// AnalyzeRequest is the body of POST /analyze/gait and /analyze/squat.
// Option fields override the server's configured defaults when set.
type AnalyzeRequest struct {
	SessionID string `json:"session_id"`
	TrialName string `json:"trial_name"`

	// Gait options
	Leg        *string `json:"leg,omitempty"`
	NGaitCycle *int    `json:"n_gait_cycles,omitempty"`
	GaitStyle  *string `json:"gait_style,omitempty"`

	// Squat options
	NRepetitions *int `json:"n_repetitions,omitempty"`

	// Shared trial options
	LowpassCutoffHz *float64 `json:"lowpass_cutoff_hz,omitempty"`
	TrimmingStart   *float64 `json:"trimming_start,omitempty"`
	TrimmingEnd     *float64 `json:"trimming_end,omitempty"`

	// Redownload forces a fresh fetch even when the trial files are already
	// on disk.
	Redownload bool `json:"redownload,omitempty"`
}

// AnalyzeResponse is the body returned by the analyze endpoints.
type AnalyzeResponse struct {
	RunID          string          `json:"run_id"`
	SessionID      string          `json:"session_id"`
	TrialName      string          `json:"trial_name"`
	Kind           string          `json:"kind"`
	Leg            string          `json:"leg,omitempty"`
	NumCycles      int             `json:"num_cycles"`
	TreadmillSpeed float64         `json:"treadmill_speed,omitempty"`
	Scalars        json.RawMessage `json:"scalars"`
	Report         *report.Report  `json:"report,omitempty"`
}

// RunsResponse is the body of GET /runs.
type RunsResponse struct {
	Runs []db.AnalysisRun `json:"runs"`
}

// ComHeightResponse is the body of GET /com-height.
type ComHeightResponse struct {
	SessionID   string  `json:"session_id"`
	TrialName   string  `json:"trial_name"`
	MaxHeightM  float64 `json:"max_height_m"`
	TimeSeconds float64 `json:"time_s"`
}
