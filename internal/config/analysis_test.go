package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/stride.report/internal/gait"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAnalysisConfig(t *testing.T) {
	path := writeConfig(t, "analysis.json", `{
		"leg": "r",
		"n_gait_cycles": 3,
		"gait_lowpass_cutoff_hz": 5,
		"data_dir": "/var/lib/stride/data",
		"listen_addr": ":9000"
	}`)

	cfg, err := LoadAnalysisConfig(path)
	require.NoError(t, err)
	assert.Equal(t, gait.LegRight, cfg.GetLeg())
	assert.Equal(t, 3, cfg.GetNGaitCycles())
	assert.InDelta(t, 5, cfg.GetGaitLowpassCutoffHz(), 1e-12)
	assert.Equal(t, "/var/lib/stride/data", cfg.GetDataDir())
	assert.Equal(t, ":9000", cfg.GetListenAddr())

	// Fields the file omits keep their built-in defaults.
	assert.Equal(t, -1, cfg.GetNRepetitions())
	assert.InDelta(t, 4, cfg.GetSquatLowpassCutoffHz(), 1e-12)
	assert.Equal(t, "stride.db", cfg.GetDatabasePath())
	assert.Equal(t, "https://api.opencap.ai", cfg.GetAPIBaseURL())
}

func TestLoadAnalysisConfigRejectsNonJSON(t *testing.T) {
	path := writeConfig(t, "analysis.yaml", "leg: r\n")
	_, err := LoadAnalysisConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json")
}

func TestLoadAnalysisConfigMissingFile(t *testing.T) {
	_, err := LoadAnalysisConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadAnalysisConfigBadJSON(t *testing.T) {
	path := writeConfig(t, "analysis.json", "{not json")
	_, err := LoadAnalysisConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	badLeg := "left-ish"
	assert.Error(t, (&AnalysisConfig{Leg: &badLeg}).Validate())

	badStyle := "moonwalk"
	assert.Error(t, (&AnalysisConfig{GaitStyle: &badStyle}).Validate())

	badCycles := -2
	assert.Error(t, (&AnalysisConfig{NGaitCycles: &badCycles}).Validate())

	badReps := -5
	assert.Error(t, (&AnalysisConfig{NRepetitions: &badReps}).Validate())

	badTrim := -0.5
	assert.Error(t, (&AnalysisConfig{TrimmingStart: &badTrim}).Validate())
	assert.Error(t, (&AnalysisConfig{TrimmingEnd: &badTrim}).Validate())

	assert.NoError(t, EmptyAnalysisConfig().Validate())
}

func TestDefaultsOnEmptyConfig(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	assert.Equal(t, gait.LegAuto, cfg.GetLeg())
	assert.Equal(t, -1, cfg.GetNGaitCycles())
	assert.Equal(t, gait.StyleAuto, cfg.GetGaitStyle())
	assert.InDelta(t, 6, cfg.GetGaitLowpassCutoffHz(), 1e-12)
	assert.Zero(t, cfg.GetTrimmingStart())
	assert.Zero(t, cfg.GetTrimmingEnd())
	assert.Equal(t, "data", cfg.GetDataDir())
	assert.Equal(t, ":8080", cfg.GetListenAddr())
}

func TestGaitAndSquatConfigAssembly(t *testing.T) {
	leg := "l"
	cycles := 2
	cutoff := 8.0
	trim := 1.5
	cfg := &AnalysisConfig{
		Leg:                 &leg,
		NGaitCycles:         &cycles,
		GaitLowpassCutoffHz: &cutoff,
		TrimmingStart:       &trim,
	}

	gc := cfg.GaitConfig()
	assert.Equal(t, gait.LegLeft, gc.Leg)
	assert.Equal(t, 2, gc.NumCycles)
	assert.InDelta(t, 8, gc.LowpassCutoffHz, 1e-12)
	assert.InDelta(t, 1.5, gc.TrimStart, 1e-12)
	assert.Zero(t, gc.TrimEnd)

	sc := cfg.SquatConfig()
	assert.Equal(t, -1, sc.NumRepetitions)
	assert.InDelta(t, 4, sc.LowpassCutoffHz, 1e-12)
	assert.InDelta(t, 1.5, sc.TrimStart, 1e-12)
}
