package gait

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/stride.report/internal/kinematics"
)

// overgroundSpeedThreshold is the belt-speed estimate, in m/s, below which an
// auto-styled trial is classified as overground.
const overgroundSpeedThreshold = 0.3

// estimateTreadmillSpeed classifies the trial and estimates belt speed in
// m/s. The estimate averages the instantaneous velocity of the ipsilateral
// ankle marker over the middle of each stance phase, where the foot is
// planted and moving with the belt. Overground trials report zero.
func estimateTreadmillSpeed(trial kinematics.Provider, events *CycleEvents, style GaitStyle) (float64, []float64, error) {
	n := events.NumCycles()
	perCycle := make([]float64, n)

	if style == StyleOverground {
		return 0, perCycle, nil
	}

	foot, err := trial.Marker(kinematics.SideMarker(events.Leg, "ankle"))
	if err != nil {
		return 0, nil, err
	}
	dt := trial.SampleInterval()

	for i, ips := range events.IpsiIdx {
		stanceLen := float64(ips[1] - ips[0])
		start := int(math.Round(float64(ips[0]) + 0.1*stanceLen))
		end := int(math.Round(float64(ips[1]) - 0.3*stanceLen))

		// Mean frame-to-frame displacement over the window, as a velocity.
		var mean kinematics.Vec3
		for f := start; f < end-1; f++ {
			mean = mean.Add(foot[f+1].Sub(foot[f]))
		}
		if end-1 > start {
			mean = mean.Scale(1 / float64(end-1-start))
		}
		perCycle[i] = mean.Scale(1 / dt).Norm()
	}

	speed := stat.Mean(perCycle, nil)
	if speed < overgroundSpeedThreshold && style != StyleTreadmill {
		speed = 0
		perCycle = make([]float64, n)
	}
	return speed, perCycle, nil
}
