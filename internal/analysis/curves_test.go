package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/sigproc"
)

func newCurveTrial(t *testing.T, n int) kinematics.Provider {
	t.Helper()
	times := make([]float64, n)
	ramp := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * 0.01
		ramp[i] = float64(i)
	}
	trial, err := kinematics.NewTrial(times, nil, times,
		map[string][]float64{"knee_angle_r": ramp}, []string{"knee_angle_r"})
	require.NoError(t, err)
	return trial
}

func TestNormalizeWindows(t *testing.T) {
	trial := newCurveTrial(t, 100)

	curves, err := NormalizeWindows(trial, [][2]int{{0, 20}, {20, 60}})
	require.NoError(t, err)

	require.Len(t, curves.PercentCycle, sigproc.CycleSamples)
	assert.InDelta(t, 0, curves.PercentCycle[0], 1e-12)
	assert.InDelta(t, 100, curves.PercentCycle[sigproc.CycleSamples-1], 1e-12)

	require.Len(t, curves.Cycles, 2)
	first := curves.Cycles[0]["knee_angle_r"]
	require.Len(t, first, sigproc.CycleSamples)
	assert.InDelta(t, 0, first[0], 1e-9)
	assert.InDelta(t, 20, first[sigproc.CycleSamples-1], 1e-9)

	second := curves.Cycles[1]["knee_angle_r"]
	assert.InDelta(t, 20, second[0], 1e-9)
	assert.InDelta(t, 60, second[sigproc.CycleSamples-1], 1e-9)

	mean := curves.Mean["knee_angle_r"]
	assert.InDelta(t, 10, mean[0], 1e-9)
	assert.InDelta(t, 40, mean[sigproc.CycleSamples-1], 1e-9)

	// Two cycles only, so no std.
	assert.Nil(t, curves.Std)
}

func TestNormalizeWindowsStdWithEnoughCycles(t *testing.T) {
	trial := newCurveTrial(t, 100)

	curves, err := NormalizeWindows(trial, [][2]int{{0, 10}, {10, 20}, {20, 30}})
	require.NoError(t, err)
	require.NotNil(t, curves.Std)
	std := curves.Std["knee_angle_r"]
	require.Len(t, std, sigproc.CycleSamples)
	// Cycle starts are 0, 10, 20; population std is sqrt(200/3).
	assert.InDelta(t, 8.16496580927726, std[0], 1e-6)
}

func TestNormalizeWindowsBadWindow(t *testing.T) {
	trial := newCurveTrial(t, 100)
	_, err := NormalizeWindows(trial, [][2]int{{5, 5}})
	assert.Error(t, err)
}
