package gait

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
)

// Synthetic walking trial: the pelvis translates along +X at pelvisSpeed
// while the feet oscillate around it at one stride per gaitPeriod. The foot
// phases are chosen so the events land in the physiological order
// rHS(0.25T) -> lTO(0.35T) -> lHS(0.75T) -> rTO(0.85T), with the right
// heel-strikes at t = 0.3s, 1.5s, 2.7s, ...
const (
	gaitPeriod = 1.2
	gaitRate   = 100.0
	footAmp    = 0.3
)

func syntheticWalkTrial(t *testing.T, seconds, pelvisSpeed float64) *kinematics.Trial {
	t.Helper()
	n := int(seconds * gaitRate)
	times := make([]float64, n)
	omega := 2 * math.Pi / gaitPeriod

	type traj = []kinematics.Vec3
	mk := func() traj { return make(traj, n) }
	markers := map[string]traj{
		kinematics.MarkerRCalc: mk(), kinematics.MarkerLCalc: mk(),
		kinematics.MarkerRToe: mk(), kinematics.MarkerLToe: mk(),
		kinematics.MarkerRAnkle: mk(), kinematics.MarkerLAnkle: mk(),
		kinematics.MarkerRMAnkle: mk(), kinematics.MarkerLMAnkle: mk(),
		kinematics.MarkerRASIS: mk(), kinematics.MarkerLASIS: mk(),
		kinematics.MarkerRPSIS: mk(), kinematics.MarkerLPSIS: mk(),
	}
	kneeR := make([]float64, n)
	kneeL := make([]float64, n)

	for i := 0; i < n; i++ {
		tv := float64(i) / gaitRate
		times[i] = tv
		px := pelvisSpeed * tv

		footR := footAmp * math.Sin(omega*tv)
		footL := footAmp * math.Sin(omega*tv+math.Pi)
		toeR := footAmp * math.Sin(omega*tv-0.2*math.Pi)
		toeL := footAmp * math.Sin(omega*tv+0.8*math.Pi)

		markers[kinematics.MarkerRASIS][i] = kinematics.Vec3{X: px + 0.1, Y: 0.95, Z: 0.12}
		markers[kinematics.MarkerLASIS][i] = kinematics.Vec3{X: px + 0.1, Y: 0.95, Z: -0.12}
		markers[kinematics.MarkerRPSIS][i] = kinematics.Vec3{X: px - 0.1, Y: 0.95, Z: 0.1}
		markers[kinematics.MarkerLPSIS][i] = kinematics.Vec3{X: px - 0.1, Y: 0.95, Z: -0.1}

		markers[kinematics.MarkerRCalc][i] = kinematics.Vec3{X: px - 0.1 + footR, Y: 0.05, Z: 0.1}
		markers[kinematics.MarkerLCalc][i] = kinematics.Vec3{X: px - 0.1 + footL, Y: 0.05, Z: -0.1}
		markers[kinematics.MarkerRToe][i] = kinematics.Vec3{X: px + 0.05 + toeR, Y: 0.03, Z: 0.1}
		markers[kinematics.MarkerLToe][i] = kinematics.Vec3{X: px + 0.05 + toeL, Y: 0.03, Z: -0.1}

		markers[kinematics.MarkerRAnkle][i] = kinematics.Vec3{X: px - 0.1 + footR, Y: 0.12, Z: 0.12}
		markers[kinematics.MarkerRMAnkle][i] = kinematics.Vec3{X: px - 0.1 + footR, Y: 0.12, Z: 0.08}
		markers[kinematics.MarkerLAnkle][i] = kinematics.Vec3{X: px - 0.1 + footL, Y: 0.12, Z: -0.12}
		markers[kinematics.MarkerLMAnkle][i] = kinematics.Vec3{X: px - 0.1 + footL, Y: 0.12, Z: -0.08}

		kneeR[i] = 30 + 20*math.Sin(omega*tv)
		kneeL[i] = 30 + 20*math.Sin(omega*tv+math.Pi)
	}

	trial, err := kinematics.NewTrial(times, markers, times,
		map[string][]float64{"knee_angle_r": kneeR, "knee_angle_l": kneeL},
		[]string{"knee_angle_r", "knee_angle_l"})
	require.NoError(t, err)
	return trial
}

func TestSegmentWalkingRightLeg(t *testing.T) {
	trial := syntheticWalkTrial(t, 6, 1.2)

	events, err := segmentWalking(trial, LegRight, -1)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Right, events.Leg)
	require.Equal(t, 4, events.NumCycles())

	// Cycles are stored backward: index 0 is the latest cycle.
	last := events.IpsiIdx[0]
	assert.InDelta(t, 390, last[0], 1)
	assert.InDelta(t, 462, last[1], 1)
	assert.InDelta(t, 510, last[2], 1)
	assert.InDelta(t, 402, events.ContraIdx[0][0], 1)
	assert.InDelta(t, 450, events.ContraIdx[0][1], 1)

	first := events.IpsiIdx[3]
	assert.InDelta(t, 30, first[0], 1)
	assert.InDelta(t, 102, first[1], 1)
	assert.InDelta(t, 150, first[2], 1)

	assert.InDelta(t, 3.9, events.IpsiTime[0][0], 0.02)
	assert.InDelta(t, 5.1, events.IpsiTime[0][2], 0.02)
}

func TestSegmentWalkingAutoLegPicksLaterHeelStrike(t *testing.T) {
	trial := syntheticWalkTrial(t, 6, 1.2)

	// The left foot heel-strikes last (t = 5.7s vs 5.1s).
	events, err := segmentWalking(trial, LegAuto, -1)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Left, events.Leg)
	assert.Equal(t, 4, events.NumCycles())
}

func TestSegmentWalkingCycleLimit(t *testing.T) {
	trial := syntheticWalkTrial(t, 6, 1.2)

	events, err := segmentWalking(trial, LegRight, 2)
	require.NoError(t, err)
	require.Equal(t, 2, events.NumCycles())
	// Working backward from the end of the trial.
	assert.InDelta(t, 510, events.IpsiIdx[0][2], 1)
	assert.InDelta(t, 270, events.IpsiIdx[1][0], 1)
}

func TestSegmentWalkingRequestTooManyCycles(t *testing.T) {
	trial := syntheticWalkTrial(t, 6, 1.2)

	events, err := segmentWalking(trial, LegRight, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, events.NumCycles())
}

func TestSegmentWalkingTooShort(t *testing.T) {
	trial := syntheticWalkTrial(t, 1, 1.2)

	_, err := segmentWalking(trial, LegRight, -1)
	var segErr *analysis.SegmentationError
	assert.ErrorAs(t, err, &segErr)
}

func TestSegmentWalkingMissingMarkers(t *testing.T) {
	n := 100
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * 0.01
	}
	trial, err := kinematics.NewTrial(times, nil, times, nil, nil)
	require.NoError(t, err)

	_, err = segmentWalking(trial, LegRight, -1)
	var missing *kinematics.MissingMarkerError
	assert.ErrorAs(t, err, &missing)
}

func TestCorrectEventOrder(t *testing.T) {
	good := gaitPeaks{
		rHS: []int{30, 150}, lTO: []int{42, 162},
		lHS: []int{90, 210}, rTO: []int{102, 222},
	}
	assert.True(t, correctEventOrder(good))

	// Two right heel-strikes in a row cannot happen.
	bad := gaitPeaks{
		rHS: []int{30, 60, 150}, lTO: []int{42, 162},
		lHS: []int{90, 210}, rTO: []int{102, 222},
	}
	assert.False(t, correctEventOrder(bad))

	assert.True(t, correctEventOrder(gaitPeaks{}))
}

func TestChooseLeg(t *testing.T) {
	peaks := gaitPeaks{rHS: []int{10, 100}, lHS: []int{50, 140}}

	side, err := chooseLeg(LegRight, peaks)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Right, side)

	side, err = chooseLeg(LegAuto, peaks)
	require.NoError(t, err)
	assert.Equal(t, kinematics.Left, side)

	_, err = chooseLeg(LegAuto, gaitPeaks{rHS: []int{10}})
	var segErr *analysis.SegmentationError
	assert.ErrorAs(t, err, &segErr)
}

func TestLastEventInside(t *testing.T) {
	events := []int{10, 50, 90}

	idx, ok := lastEventInside(events, 0, 100)
	require.True(t, ok)
	assert.Equal(t, 90, idx)

	idx, ok = lastEventInside(events, 10, 90)
	require.True(t, ok)
	assert.Equal(t, 50, idx)

	_, ok = lastEventInside(events, 50, 90)
	assert.False(t, ok)
}
