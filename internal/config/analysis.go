package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaitlab/stride.report/internal/gait"
	"github.com/gaitlab/stride.report/internal/squat"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig is the root configuration for the analysis service. The
// schema matches the analyze request options so the same JSON can be used
// for startup defaults and per-request overrides. Fields omitted from the
// JSON retain their built-in defaults, so partial configs are safe.
type AnalysisConfig struct {
	// Gait analysis params
	Leg                 *string  `json:"leg,omitempty"`
	NGaitCycles         *int     `json:"n_gait_cycles,omitempty"`
	GaitStyle           *string  `json:"gait_style,omitempty"`
	GaitLowpassCutoffHz *float64 `json:"gait_lowpass_cutoff_hz,omitempty"`

	// Squat analysis params
	NRepetitions         *int     `json:"n_repetitions,omitempty"`
	SquatLowpassCutoffHz *float64 `json:"squat_lowpass_cutoff_hz,omitempty"`

	// Shared trial params
	TrimmingStart *float64 `json:"trimming_start,omitempty"`
	TrimmingEnd   *float64 `json:"trimming_end,omitempty"`

	// Service params
	DataDir      *string `json:"data_dir,omitempty"`
	DatabasePath *string `json:"database_path,omitempty"`
	ListenAddr   *string `json:"listen_addr,omitempty"`
	APIBaseURL   *string `json:"api_base_url,omitempty"`
}

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file. The file must
// have a .json extension and stay under the max file size.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.Leg != nil {
		if _, err := gait.ParseLegSelector(*c.Leg); err != nil {
			return err
		}
	}
	if c.GaitStyle != nil {
		if _, err := gait.ParseGaitStyle(*c.GaitStyle); err != nil {
			return err
		}
	}
	if c.NGaitCycles != nil && *c.NGaitCycles < -1 {
		return fmt.Errorf("n_gait_cycles must be -1 or positive, got %d", *c.NGaitCycles)
	}
	if c.NRepetitions != nil && *c.NRepetitions < -1 {
		return fmt.Errorf("n_repetitions must be -1 or positive, got %d", *c.NRepetitions)
	}
	if c.TrimmingStart != nil && *c.TrimmingStart < 0 {
		return fmt.Errorf("trimming_start must be non-negative, got %g", *c.TrimmingStart)
	}
	if c.TrimmingEnd != nil && *c.TrimmingEnd < 0 {
		return fmt.Errorf("trimming_end must be non-negative, got %g", *c.TrimmingEnd)
	}
	return nil
}

// GetLeg returns the leg selector or the default (auto).
func (c *AnalysisConfig) GetLeg() gait.LegSelector {
	if c.Leg == nil {
		return gait.LegAuto
	}
	leg, err := gait.ParseLegSelector(*c.Leg)
	if err != nil {
		return gait.LegAuto
	}
	return leg
}

// GetNGaitCycles returns the cycle limit or the default (all).
func (c *AnalysisConfig) GetNGaitCycles() int {
	if c.NGaitCycles == nil {
		return -1
	}
	return *c.NGaitCycles
}

// GetGaitStyle returns the gait style or the default (auto).
func (c *AnalysisConfig) GetGaitStyle() gait.GaitStyle {
	if c.GaitStyle == nil {
		return gait.StyleAuto
	}
	style, err := gait.ParseGaitStyle(*c.GaitStyle)
	if err != nil {
		return gait.StyleAuto
	}
	return style
}

// GetGaitLowpassCutoffHz returns the gait filter cutoff or the default (6 Hz,
// matching typical walking kinematics).
func (c *AnalysisConfig) GetGaitLowpassCutoffHz() float64 {
	if c.GaitLowpassCutoffHz == nil {
		return 6
	}
	return *c.GaitLowpassCutoffHz
}

// GetNRepetitions returns the repetition limit or the default (all).
func (c *AnalysisConfig) GetNRepetitions() int {
	if c.NRepetitions == nil {
		return -1
	}
	return *c.NRepetitions
}

// GetSquatLowpassCutoffHz returns the squat filter cutoff or the default
// (4 Hz, squats are slower than gait).
func (c *AnalysisConfig) GetSquatLowpassCutoffHz() float64 {
	if c.SquatLowpassCutoffHz == nil {
		return 4
	}
	return *c.SquatLowpassCutoffHz
}

// GetTrimmingStart returns the start trim duration or the default (0).
func (c *AnalysisConfig) GetTrimmingStart() float64 {
	if c.TrimmingStart == nil {
		return 0
	}
	return *c.TrimmingStart
}

// GetTrimmingEnd returns the end trim duration or the default (0).
func (c *AnalysisConfig) GetTrimmingEnd() float64 {
	if c.TrimmingEnd == nil {
		return 0
	}
	return *c.TrimmingEnd
}

// GetDataDir returns the session data directory or the default.
func (c *AnalysisConfig) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return "data"
	}
	return *c.DataDir
}

// GetDatabasePath returns the results database path or the default.
func (c *AnalysisConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "stride.db"
	}
	return *c.DatabasePath
}

// GetListenAddr returns the HTTP listen address or the default.
func (c *AnalysisConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetAPIBaseURL returns the motion-capture platform API base URL or the
// default.
func (c *AnalysisConfig) GetAPIBaseURL() string {
	if c.APIBaseURL == nil || *c.APIBaseURL == "" {
		return "https://api.opencap.ai"
	}
	return *c.APIBaseURL
}

// GaitConfig assembles the gait construction parameters from this config.
func (c *AnalysisConfig) GaitConfig() gait.Config {
	return gait.Config{
		Leg:             c.GetLeg(),
		NumCycles:       c.GetNGaitCycles(),
		Style:           c.GetGaitStyle(),
		LowpassCutoffHz: c.GetGaitLowpassCutoffHz(),
		TrimStart:       c.GetTrimmingStart(),
		TrimEnd:         c.GetTrimmingEnd(),
	}
}

// SquatConfig assembles the squat construction parameters from this config.
func (c *AnalysisConfig) SquatConfig() squat.Config {
	return squat.Config{
		NumRepetitions:  c.GetNRepetitions(),
		LowpassCutoffHz: c.GetSquatLowpassCutoffHz(),
		TrimStart:       c.GetTrimmingStart(),
		TrimEnd:         c.GetTrimmingEnd(),
	}
}
