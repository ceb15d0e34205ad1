// Package squat segments squat trials into repetitions and computes the
// per-repetition scalar metrics.
package squat

import (
	"math"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/sigproc"
)

const (
	// minDescentMeters is the minimum pelvis drop below standing height for
	// a dip to count as a squat.
	minDescentMeters = 0.2

	// minRepSeparation is the minimum time between the bottoms of two
	// repetitions, in seconds.
	minRepSeparation = 0.7
)

// RepetitionEvents holds the detected start/end frame of every squat
// repetition, in chronological order.
type RepetitionEvents struct {
	// Idx holds [start, end] frame indices per repetition. Start and end sit
	// at the standing (highest pelvis) positions flanking the bottom of the
	// squat.
	Idx [][2]int

	// Times holds the corresponding [start, end] times in seconds.
	Times [][2]float64
}

// NumRepetitions returns the number of detected repetitions.
func (e *RepetitionEvents) NumRepetitions() int { return len(e.Idx) }

// segmentSquat detects squat repetitions from the vertical pelvis position.
// The signal is inverted so the bottom of each squat becomes a peak, detected
// with a minimum depth and inter-repetition spacing. Each repetition then
// spans the highest pelvis positions adjacent to its bottom. nRepetitions
// limits the result to the last N repetitions; -1 keeps all.
func segmentSquat(trial kinematics.Provider, nRepetitions int) (*RepetitionEvents, error) {
	pelvisTY, err := trial.Coordinate("pelvis_ty")
	if err != nil {
		return nil, err
	}
	dt := trial.SampleInterval()

	// Depth below the highest point, peaking at the bottom of each squat.
	depth := make([]float64, len(pelvisTY))
	// Height above the lowest point, peaking while standing.
	height := make([]float64, len(pelvisTY))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range pelvisTY {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i, v := range pelvisTY {
		depth[i] = hi - v
		height[i] = v - lo
	}

	bottoms := sigproc.FindPeaks(depth, sigproc.PeakOptions{
		MinHeight:   minDescentMeters,
		MinDistance: int(minRepSeparation / dt),
	})
	if len(bottoms) == 0 {
		return nil, &analysis.SegmentationError{Reason: "no squat repetitions found"}
	}

	events := &RepetitionEvents{}
	prev := 0
	for i, bottom := range bottoms {
		next := len(height)
		if i < len(bottoms)-1 {
			next = bottoms[i+1]
		}
		start := prev
		if bottom > prev {
			start = prev + argmax(height[prev:bottom])
		}
		end := bottom + argmax(height[bottom:next])
		events.Idx = append(events.Idx, [2]int{start, end})
		prev = bottom
	}

	if nRepetitions != -1 && nRepetitions < len(events.Idx) {
		events.Idx = events.Idx[len(events.Idx)-nRepetitions:]
	}

	timeVec := trial.Time()
	for _, idx := range events.Idx {
		events.Times = append(events.Times, [2]float64{timeVec[idx[0]], timeVec[idx[1]]})
	}
	return events, nil
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
