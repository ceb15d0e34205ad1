package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/units"
)

func TestBandColors(t *testing.T) {
	assert.Equal(t, []string{"red", "yellow", "green"}, BandAbove.Colors())
	assert.Equal(t, []string{"green", "yellow", "red"}, BandBelow.Colors())
	assert.Equal(t, []string{"red", "green", "red"}, BandCentered.Colors())
}

func TestSpecMetricLimits(t *testing.T) {
	sc := analysis.Scalar{Value: 1.234567, Std: 0.04, Unit: units.Meters}

	t.Run("above", func(t *testing.T) {
		s := spec{name: "m", label: "M", decimal: 2, multiplier: 1, band: BandAbove, min: 1.0}
		m := s.metric(sc)
		assert.InDelta(t, 1.23, m.Value, 1e-12)
		assert.InDelta(t, 0.90, m.MinLimit, 1e-12)
		assert.InDelta(t, 1.00, m.MaxLimit, 1e-12)
	})

	t.Run("below reverse colors", func(t *testing.T) {
		s := spec{name: "m", label: "M", decimal: 1, multiplier: 1, band: BandBelow, min: 35}
		m := s.metric(analysis.Scalar{Value: 30.04})
		assert.InDelta(t, 30.0, m.Value, 1e-12)
		assert.InDelta(t, 35.0, m.MinLimit, 1e-12)
		assert.InDelta(t, 38.5, m.MaxLimit, 1e-12)
		assert.Equal(t, BandBelow.Colors(), m.Colors)
	})

	t.Run("centered", func(t *testing.T) {
		s := spec{name: "m", label: "M", decimal: 1, multiplier: 1, band: BandCentered, min: 90, max: 110}
		m := s.metric(analysis.Scalar{Value: 101.26})
		assert.InDelta(t, 101.3, m.Value, 1e-12)
		assert.InDelta(t, 90.0, m.MinLimit, 1e-12)
		assert.InDelta(t, 110.0, m.MaxLimit, 1e-12)
	})

	t.Run("multiplier", func(t *testing.T) {
		s := spec{name: "m", label: "M", decimal: 1, multiplier: 100, band: BandCentered, min: 4.3 * 1.8, max: 7.4 * 1.8}
		m := s.metric(analysis.Scalar{Value: 0.0612})
		assert.InDelta(t, 6.1, m.Value, 1e-12)
	})
}

func TestBuildSkipsMissingScalars(t *testing.T) {
	set := analysis.NewScalarSet()
	set.Add("present", analysis.Scalar{Value: 1})

	metrics := build(set, []spec{
		{name: "present", label: "P", multiplier: 1},
		{name: "absent", label: "A", multiplier: 1},
	})
	require.Len(t, metrics, 1)
	assert.Equal(t, "present", metrics[0].Name)
}

func TestGaitSpecsScaleWithHeight(t *testing.T) {
	specs := gaitSpecs(1.8)
	byName := map[string]spec{}
	for _, s := range specs {
		byName[s.name] = s
	}
	assert.InDelta(t, 0.45*1.8, byName["stride_length"].min, 1e-12)
	assert.InDelta(t, 4.3*1.8, byName["step_width"].min, 1e-12)
	assert.InDelta(t, 7.4*1.8, byName["step_width"].max, 1e-12)
}

func newChartTrial(t *testing.T) kinematics.Provider {
	t.Helper()
	n := 20
	timeVec := make([]float64, n)
	knee := make([]float64, n)
	beta := make([]float64, n)
	mtp := make([]float64, n)
	for i := range timeVec {
		timeVec[i] = float64(i) * 0.01
		knee[i] = float64(i)
	}
	trial, err := kinematics.NewTrial(timeVec, map[string][]kinematics.Vec3{}, timeVec,
		map[string][]float64{"knee_angle_r": knee, "knee_angle_r_beta": beta, "mtp_angle_r": mtp},
		[]string{"knee_angle_r", "knee_angle_r_beta", "mtp_angle_r"})
	require.NoError(t, err)
	return trial
}

func TestChartCoordinateNamesExcludesArtifacts(t *testing.T) {
	trial := newChartTrial(t)
	assert.Equal(t, []string{"knee_angle_r"}, ChartCoordinateNames(trial))
}

func TestRenderCurveChart(t *testing.T) {
	trial := newChartTrial(t)
	var buf bytes.Buffer
	err := RenderCurveChart(&buf, trial, Window{StartIdx: 2, EndIdx: 15}, "Joint angles", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "knee_angle_r")
	assert.NotContains(t, buf.String(), "knee_angle_r_beta")
}

func TestRenderCurveChartBadWindow(t *testing.T) {
	trial := newChartTrial(t)
	var buf bytes.Buffer
	err := RenderCurveChart(&buf, trial, Window{StartIdx: 5, EndIdx: 100}, "Joint angles", nil)
	assert.Error(t, err)
}
