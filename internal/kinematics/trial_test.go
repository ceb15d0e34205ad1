package kinematics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampTimes(n int, dt float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * dt
	}
	return out
}

func constTraj(n int, v Vec3) []Vec3 {
	out := make([]Vec3, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newRampTrial(t *testing.T, n int) *Trial {
	t.Helper()
	times := rampTimes(n, 0.01)
	coords := map[string][]float64{"knee_angle_r": make([]float64, n)}
	for i := range coords["knee_angle_r"] {
		coords["knee_angle_r"][i] = float64(i)
	}
	trial, err := NewTrial(times,
		map[string][]Vec3{MarkerRCalc: constTraj(n, Vec3{1, 0, 0})},
		times, coords, []string{"knee_angle_r"})
	require.NoError(t, err)
	return trial
}

func TestNewTrialValidation(t *testing.T) {
	times := rampTimes(10, 0.01)

	_, err := NewTrial(times[:1], nil, times[:1], nil, nil)
	assert.Error(t, err)

	// Mismatched time bases.
	shifted := make([]float64, len(times))
	for i, v := range times {
		shifted[i] = v + 0.01
	}
	_, err = NewTrial(times, nil, shifted, nil, nil)
	var tbErr *TimeBaseError
	require.ErrorAs(t, err, &tbErr)
	assert.InDelta(t, 0.01, tbErr.MaxDelta, 1e-9)

	// Within tolerance is accepted.
	for i := range shifted {
		shifted[i] = times[i] + 0.0005
	}
	_, err = NewTrial(times, nil, shifted, nil, nil)
	assert.NoError(t, err)

	// Trajectory length mismatches.
	_, err = NewTrial(times, map[string][]Vec3{MarkerRCalc: constTraj(5, Vec3{})}, times, nil, nil)
	assert.Error(t, err)
	_, err = NewTrial(times, nil, times, map[string][]float64{"knee_angle_r": make([]float64, 5)}, nil)
	assert.Error(t, err)
}

func TestTrialAccessors(t *testing.T) {
	trial := newRampTrial(t, 50)

	assert.Equal(t, 50, trial.NumFrames())
	assert.InDelta(t, 0.01, trial.SampleInterval(), 1e-9)
	assert.True(t, trial.HasMarker(MarkerRCalc))
	assert.False(t, trial.HasMarker(MarkerLCalc))
	assert.Equal(t, []string{"knee_angle_r"}, trial.CoordinateNames())

	traj, err := trial.Marker(MarkerRCalc)
	require.NoError(t, err)
	assert.Len(t, traj, 50)

	_, err = trial.Marker(MarkerLToe)
	var mmErr *MissingMarkerError
	require.ErrorAs(t, err, &mmErr)
	assert.Equal(t, MarkerLToe, mmErr.Marker)

	_, err = trial.Coordinate("hip_flexion_r")
	var ncErr *NoSuchCoordinateError
	require.ErrorAs(t, err, &ncErr)
	assert.Equal(t, "hip_flexion_r", ncErr.Coordinate)
	assert.Contains(t, ncErr.Error(), "knee_angle_r")
}

func TestTrim(t *testing.T) {
	trial := newRampTrial(t, 100)

	trimmed, err := trial.Trim(0.1, 0.2)
	require.NoError(t, err)
	times := trimmed.Time()
	assert.InDelta(t, 0.10, times[0], 1e-9)
	assert.InDelta(t, 0.79, times[len(times)-1], 1e-9)

	vals, err := trimmed.Coordinate("knee_angle_r")
	require.NoError(t, err)
	assert.InDelta(t, 10, vals[0], 1e-9)

	// Trimmed copy does not alias the original.
	vals[0] = 999
	orig, err := trial.Coordinate("knee_angle_r")
	require.NoError(t, err)
	assert.InDelta(t, 10, orig[10], 1e-9)

	_, err = trial.Trim(-1, 0)
	assert.Error(t, err)
	_, err = trial.Trim(0.5, 0.5)
	assert.Error(t, err)
}

func TestTrimZeroDurationsCopy(t *testing.T) {
	trial := newRampTrial(t, 20)
	copyTrial, err := trial.Trim(0, 0)
	require.NoError(t, err)
	assert.Equal(t, trial.NumFrames(), copyTrial.NumFrames())
	assert.Equal(t, trial.Time(), copyTrial.Time())
}

func TestLoadTrial(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "MarkerData"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "OpenSimData", "Kinematics"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "MarkerData", "walk.trc"),
		[]byte(trcFixture("mm", []string{
			"1\t0.00\t100\t200\t300\t400\t500\t600",
			"2\t0.01\t101\t201\t301\t401\t501\t601",
			"3\t0.02\t102\t202\t302\t402\t502\t602",
		})), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "OpenSimData", "Kinematics", "walk.mot"),
		[]byte(motFixture([]string{
			"0.00\t1\t2",
			"0.01\t3\t4",
			"0.02\t5\t6",
		})), 0o644))

	trial, err := LoadTrial(dir, "walk", -1)
	require.NoError(t, err)
	assert.Equal(t, 3, trial.NumFrames())
	assert.True(t, trial.HasMarker(MarkerRCalc))
	vals, err := trial.Coordinate("knee_angle_l")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, vals)

	_, err = LoadTrial(dir, "missing", -1)
	assert.Error(t, err)
}

func TestCenterOfMassFallsBackToCapturedSegments(t *testing.T) {
	// Only the pelvis landmarks are present, so the center of mass reduces
	// to the pelvis center.
	n := 10
	times := rampTimes(n, 0.01)
	markers := map[string][]Vec3{
		MarkerRASIS: constTraj(n, Vec3{1, 1, 1}),
		MarkerLASIS: constTraj(n, Vec3{-1, 1, 1}),
		MarkerRPSIS: constTraj(n, Vec3{1, 1, -1}),
		MarkerLPSIS: constTraj(n, Vec3{-1, 1, -1}),
	}
	trial, err := NewTrial(times, markers, times, nil, nil)
	require.NoError(t, err)

	com := trial.CenterOfMass()
	require.Len(t, com, n)
	assert.InDelta(t, 0, com[0].X, 1e-12)
	assert.InDelta(t, 1, com[0].Y, 1e-12)
	assert.InDelta(t, 0, com[0].Z, 1e-12)
}

func TestSideHelpers(t *testing.T) {
	assert.Equal(t, Right, Left.Opposite())
	assert.Equal(t, Left, Right.Opposite())
	assert.Equal(t, "r_calc_study", SideMarker(Right, "calc"))
	assert.Equal(t, "L_toe_study", SideMarker(Left, "toe"))
}
