// Package session fetches motion-capture session data from the processing
// platform API and lays it out on disk the way the analysis loaders expect:
//
//	<dataDir>/<session_id>/
//	    sessionMetadata.yaml
//	    MarkerData/<trial>.trc
//	    OpenSimData/Kinematics/<trial>.mot
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gaitlab/stride.report/internal/monitoring"
)

// maxDownloadBytes caps any single downloaded file. Marker and coordinate
// files for a few minutes of capture are single-digit megabytes.
const maxDownloadBytes = 256 << 20

// Result tags used by the platform API to label per-trial files.
const (
	tagMarkerData      = "marker_data"
	tagIKResults       = "ik_results"
	tagSessionMetadata = "session_metadata"
)

// Client downloads session and trial data from the platform API into a local
// data directory.
type Client struct {
	baseURL string
	dataDir string
	http    *http.Client
}

// NewClient returns a client for the API at baseURL that stores downloads
// under dataDir.
func NewClient(baseURL, dataDir string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		dataDir: dataDir,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// sessionJSON is the subset of the session document the client needs.
type sessionJSON struct {
	ID     string      `json:"id"`
	Trials []trialJSON `json:"trials"`
}

// trialJSON is the subset of the trial document the client needs.
type trialJSON struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Status  string       `json:"status"`
	Results []resultJSON `json:"results"`
}

type resultJSON struct {
	Tag   string `json:"tag"`
	Media string `json:"media"`
}

// SessionDir returns the local directory for a session, rejecting identifiers
// that would escape the data root.
func (c *Client) SessionDir(sessionID string) (string, error) {
	if err := validateIdentifier(sessionID); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return filepath.Join(c.dataDir, sessionID), nil
}

// TrialID resolves a trial name within a session to the trial's identifier.
func (c *Client) TrialID(ctx context.Context, sessionID, trialName string) (string, error) {
	if err := validateIdentifier(sessionID); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}

	var session sessionJSON
	if err := c.getJSON(ctx, fmt.Sprintf("%s/sessions/%s/", c.baseURL, sessionID), &session); err != nil {
		return "", fmt.Errorf("fetch session %s: %w", sessionID, err)
	}

	for _, trial := range session.Trials {
		if trial.Name == trialName {
			return trial.ID, nil
		}
	}
	return "", fmt.Errorf("trial %q not found in session %s", trialName, sessionID)
}

// DownloadTrial fetches a trial's marker and coordinate files plus the session
// metadata into the session directory, and returns the trial name. Files that
// already exist locally are overwritten so a re-download always reflects the
// latest processing results.
func (c *Client) DownloadTrial(ctx context.Context, sessionID, trialID string) (string, error) {
	sessionDir, err := c.SessionDir(sessionID)
	if err != nil {
		return "", err
	}
	if err := validateIdentifier(trialID); err != nil {
		return "", fmt.Errorf("invalid trial id: %w", err)
	}

	var trial trialJSON
	if err := c.getJSON(ctx, fmt.Sprintf("%s/trials/%s/", c.baseURL, trialID), &trial); err != nil {
		return "", fmt.Errorf("fetch trial %s: %w", trialID, err)
	}
	if trial.Name == "" {
		return "", fmt.Errorf("trial %s has no name", trialID)
	}
	if err := validateIdentifier(trial.Name); err != nil {
		return "", fmt.Errorf("invalid trial name %q: %w", trial.Name, err)
	}

	targets := map[string]string{
		tagMarkerData:      filepath.Join(sessionDir, "MarkerData", trial.Name+".trc"),
		tagIKResults:       filepath.Join(sessionDir, "OpenSimData", "Kinematics", trial.Name+".mot"),
		tagSessionMetadata: filepath.Join(sessionDir, "sessionMetadata.yaml"),
	}

	downloaded := map[string]bool{}
	for _, result := range trial.Results {
		dest, ok := targets[result.Tag]
		if !ok || downloaded[result.Tag] {
			continue
		}
		if err := c.downloadFile(ctx, result.Media, dest); err != nil {
			return "", fmt.Errorf("download %s for trial %s: %w", result.Tag, trial.Name, err)
		}
		downloaded[result.Tag] = true
	}

	for _, tag := range []string{tagMarkerData, tagIKResults} {
		if !downloaded[tag] {
			return "", fmt.Errorf("trial %s has no %s result", trial.Name, tag)
		}
	}

	monitoring.Logf("session: downloaded trial %s (session %s) to %s", trial.Name, sessionID, sessionDir)
	return trial.Name, nil
}

// FetchTrial resolves a trial by name and downloads it, returning the local
// session directory and the trial name.
func (c *Client) FetchTrial(ctx context.Context, sessionID, trialName string) (sessionDir, name string, err error) {
	trialID, err := c.TrialID(ctx, sessionID, trialName)
	if err != nil {
		return "", "", err
	}
	name, err = c.DownloadTrial(ctx, sessionID, trialID)
	if err != nil {
		return "", "", err
	}
	sessionDir, err = c.SessionDir(sessionID)
	if err != nil {
		return "", "", err
	}
	return sessionDir, name, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxDownloadBytes)).Decode(dst)
}

func (c *Client) downloadFile(ctx context.Context, url, dest string) error {
	if url == "" {
		return fmt.Errorf("empty media url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDownloadBytes)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// validateIdentifier rejects identifiers that could traverse outside the data
// directory when joined into a path.
func validateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("empty identifier")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("identifier %q contains path separators", id)
	}
	return nil
}
