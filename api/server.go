// Package api exposes the analysis service over HTTP: analyze a session
// trial, browse stored runs, and render the joint-angle curve chart.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/config"
	"github.com/gaitlab/stride.report/internal/db"
	"github.com/gaitlab/stride.report/internal/gait"
	"github.com/gaitlab/stride.report/internal/httputil"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/monitoring"
	"github.com/gaitlab/stride.report/internal/report"
	"github.com/gaitlab/stride.report/internal/session"
	"github.com/gaitlab/stride.report/internal/squat"
)

// TrialFetcher downloads a trial's files into the local data directory and
// returns the session directory plus the canonical trial name.
type TrialFetcher interface {
	FetchTrial(ctx context.Context, sessionID, trialName string) (sessionDir, name string, err error)
}

// Server handles the analysis API routes.
type Server struct {
	cfg     *config.AnalysisConfig
	db      *db.DB
	fetcher TrialFetcher
}

// NewServer creates an API server over the given config, results store, and
// trial fetcher.
func NewServer(cfg *config.AnalysisConfig, database *db.DB, fetcher TrialFetcher) *Server {
	return &Server{cfg: cfg, db: database, fetcher: fetcher}
}

// ServeMux returns the route table for the API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/gait", s.handleAnalyzeGait)
	mux.HandleFunc("/analyze/squat", s.handleAnalyzeSquat)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunByID)
	mux.HandleFunc("/chart", s.handleChart)
	mux.HandleFunc("/com-height", s.handleComHeight)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// trialOptions merges the configured defaults with per-request overrides.
func (s *Server) trialOptions(req *AnalyzeRequest) (gait.Config, squat.Config, error) {
	gaitCfg := s.cfg.GaitConfig()
	squatCfg := s.cfg.SquatConfig()

	if req.Leg != nil {
		leg, err := gait.ParseLegSelector(*req.Leg)
		if err != nil {
			return gaitCfg, squatCfg, err
		}
		gaitCfg.Leg = leg
	}
	if req.GaitStyle != nil {
		style, err := gait.ParseGaitStyle(*req.GaitStyle)
		if err != nil {
			return gaitCfg, squatCfg, err
		}
		gaitCfg.Style = style
	}
	if req.NGaitCycle != nil {
		gaitCfg.NumCycles = *req.NGaitCycle
	}
	if req.NRepetitions != nil {
		squatCfg.NumRepetitions = *req.NRepetitions
	}
	if req.LowpassCutoffHz != nil {
		gaitCfg.LowpassCutoffHz = *req.LowpassCutoffHz
		squatCfg.LowpassCutoffHz = *req.LowpassCutoffHz
	}
	if req.TrimmingStart != nil {
		gaitCfg.TrimStart = *req.TrimmingStart
		squatCfg.TrimStart = *req.TrimmingStart
	}
	if req.TrimmingEnd != nil {
		gaitCfg.TrimEnd = *req.TrimmingEnd
		squatCfg.TrimEnd = *req.TrimmingEnd
	}
	return gaitCfg, squatCfg, nil
}

// trialOnDisk reports whether the trial's marker and coordinate files are
// already in the session directory.
func trialOnDisk(sessionDir, trialName string) bool {
	for _, rel := range []string{
		filepath.Join("MarkerData", trialName+".trc"),
		filepath.Join("OpenSimData", "Kinematics", trialName+".mot"),
	} {
		if _, err := os.Stat(filepath.Join(sessionDir, rel)); err != nil {
			return false
		}
	}
	return true
}

// fetchTrial resolves the local session directory for a request, downloading
// the trial files when they are not already on disk.
func (s *Server) fetchTrial(ctx context.Context, req *AnalyzeRequest) (string, string, error) {
	sessionDir := filepath.Join(s.cfg.GetDataDir(), req.SessionID)
	if !req.Redownload && trialOnDisk(sessionDir, req.TrialName) {
		return sessionDir, req.TrialName, nil
	}
	return s.fetcher.FetchTrial(ctx, req.SessionID, req.TrialName)
}

func decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, bool) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return nil, false
	}
	var req AnalyzeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, false
	}
	if req.SessionID == "" || req.TrialName == "" {
		httputil.BadRequest(w, "session_id and trial_name fields are required")
		return nil, false
	}
	return &req, true
}

func (s *Server) handleAnalyzeGait(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}
	gaitCfg, _, err := s.trialOptions(req)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	sessionDir, trialName, err := s.fetchTrial(r.Context(), req)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("fetch trial: %v", err))
		return
	}

	trial, err := kinematics.LoadTrial(sessionDir, trialName, gaitCfg.LowpassCutoffHz)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("load trial: %v", err))
		return
	}

	a, err := gait.New(trial, gaitCfg)
	if err != nil {
		var segErr *analysis.SegmentationError
		if errors.As(err, &segErr) {
			httputil.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	scalars, err := a.Scalars(nil)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	resp := AnalyzeResponse{
		SessionID:      req.SessionID,
		TrialName:      trialName,
		Kind:           db.RunKindGait,
		Leg:            string(a.Leg()),
		NumCycles:      a.NumCycles(),
		TreadmillSpeed: a.TreadmillSpeed(),
	}
	if resp.Scalars, err = json.Marshal(scalars); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	// The threshold report needs the subject height; skip it when the session
	// metadata is absent rather than failing the analysis.
	if meta, err := session.LoadMetadata(sessionDir); err == nil {
		if rep, err := report.GaitReport(a, meta.HeightM); err == nil {
			resp.Report = rep
		} else {
			monitoring.Logf("api: gait report failed for %s/%s: %v", req.SessionID, trialName, err)
		}
	} else {
		monitoring.Logf("api: no session metadata for %s: %v", req.SessionID, err)
	}

	s.recordAndWrite(w, r, &resp)
}

func (s *Server) handleAnalyzeSquat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}
	_, squatCfg, err := s.trialOptions(req)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	sessionDir, trialName, err := s.fetchTrial(r.Context(), req)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("fetch trial: %v", err))
		return
	}

	trial, err := kinematics.LoadTrial(sessionDir, trialName, squatCfg.LowpassCutoffHz)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("load trial: %v", err))
		return
	}

	a, err := squat.New(trial, squatCfg)
	if err != nil {
		var segErr *analysis.SegmentationError
		if errors.As(err, &segErr) {
			httputil.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	scalars, err := a.Scalars(nil)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	resp := AnalyzeResponse{
		SessionID: req.SessionID,
		TrialName: trialName,
		Kind:      db.RunKindSquat,
		NumCycles: a.NumRepetitions(),
	}
	if resp.Scalars, err = json.Marshal(scalars); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	if rep, err := report.SquatReport(a); err == nil {
		resp.Report = rep
	} else {
		monitoring.Logf("api: squat report failed for %s/%s: %v", req.SessionID, trialName, err)
	}

	s.recordAndWrite(w, r, &resp)
}

// recordAndWrite persists the analysis result and writes the response.
func (s *Server) recordAndWrite(w http.ResponseWriter, r *http.Request, resp *AnalyzeResponse) {
	run, err := s.db.RecordRun(r.Context(), db.AnalysisRun{
		SessionID:      resp.SessionID,
		TrialName:      resp.TrialName,
		Kind:           resp.Kind,
		Leg:            resp.Leg,
		NumCycles:      resp.NumCycles,
		TreadmillSpeed: resp.TreadmillSpeed,
		Scalars:        resp.Scalars,
	})
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("record run: %v", err))
		return
	}
	resp.RunID = run.ID
	monitoring.Logf("api: recorded %s run %s for %s/%s (%d cycles)",
		resp.Kind, run.ID, resp.SessionID, resp.TrialName, resp.NumCycles)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := s.db.Runs(r.Context(), r.URL.Query().Get("session_id"), limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" || strings.Contains(id, "/") {
		httputil.NotFound(w, "run not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.db.Run(r.Context(), id)
		if errors.Is(err, db.ErrRunNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, run)

	case http.MethodDelete:
		err := s.db.DeleteRun(r.Context(), id)
		if errors.Is(err, db.ErrRunNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleComHeight returns the peak vertical center-of-mass position of a
// locally available trial, for jump-height style queries. Query params:
// session_id, trial_name.
func (s *Server) handleComHeight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	trialName := r.URL.Query().Get("trial_name")
	if sessionID == "" || trialName == "" {
		httputil.BadRequest(w, "session_id and trial_name query params are required")
		return
	}

	sessionDir := filepath.Join(s.cfg.GetDataDir(), sessionID)
	if !trialOnDisk(sessionDir, trialName) {
		httputil.NotFound(w, "trial not downloaded; run an analysis first")
		return
	}

	trial, err := kinematics.LoadTrial(sessionDir, trialName, s.cfg.GetGaitLowpassCutoffHz())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("load trial: %v", err))
		return
	}

	com := trial.CenterOfMass()
	timeVec := trial.Time()
	best := 0
	for i, v := range com {
		if v.Y > com[best].Y {
			best = i
		}
	}
	httputil.WriteJSON(w, http.StatusOK, ComHeightResponse{
		SessionID:   sessionID,
		TrialName:   trialName,
		MaxHeightM:  com[best].Y,
		TimeSeconds: timeVec[best],
	})
}

// handleChart renders the joint-angle line chart for a locally available
// trial. Query params: session_id, trial_name, optional coords (comma
// separated).
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	trialName := r.URL.Query().Get("trial_name")
	if sessionID == "" || trialName == "" {
		httputil.BadRequest(w, "session_id and trial_name query params are required")
		return
	}

	sessionDir := filepath.Join(s.cfg.GetDataDir(), sessionID)
	if !trialOnDisk(sessionDir, trialName) {
		httputil.NotFound(w, "trial not downloaded; run an analysis first")
		return
	}

	trial, err := kinematics.LoadTrial(sessionDir, trialName, s.cfg.GetGaitLowpassCutoffHz())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("load trial: %v", err))
		return
	}

	var coords []string
	if v := r.URL.Query().Get("coords"); v != "" {
		coords = strings.Split(v, ",")
	}

	window := report.Window{StartIdx: 0, EndIdx: trial.NumFrames() - 1}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Joint angles: %s / %s", sessionID, trialName)
	if err := report.RenderCurveChart(w, trial, window, title, coords); err != nil {
		monitoring.Logf("api: chart render failed for %s/%s: %v", sessionID, trialName, err)
	}
}
