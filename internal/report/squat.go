package report

import (
	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/squat"
)

// Repetition-consistency thresholds: a standard deviation across repetitions
// under 2 degrees is good, over 4 degrees is flagged.
const (
	squatStdMin = 2
	squatStdMax = 4
)

// squatPair is one left/right coordinate pair the squat report averages into
// a single presented angle.
type squatPair struct {
	name    string
	label   string
	rightTo string
	leftTo  string
	rom     bool
	band    Band
	min     float64
	max     float64
}

func squatPairs() []squatPair {
	return []squatPair{
		{
			name: "peak_knee_flexion_angle", label: "peak knee flexion angle (deg)",
			rightTo: "knee_angle_r", leftTo: "knee_angle_l",
			band: BandAbove, min: 100,
		},
		{
			name: "peak_hip_flexion_angle", label: "peak hip flexion angle (deg)",
			rightTo: "hip_flexion_r", leftTo: "hip_flexion_l",
			band: BandAbove, min: 100,
		},
		{
			name: "peak_hip_adduction_angle", label: "peak hip adduction angle (deg)",
			rightTo: "hip_adduction_r", leftTo: "hip_adduction_l",
			band: BandCentered, min: -5, max: 5,
		},
		{
			name: "rom_knee_flexion_angle", label: "range of motion knee flexion angle (deg)",
			rightTo: "knee_angle_r", leftTo: "knee_angle_l", rom: true,
			band: BandCentered, min: 85, max: 115,
		},
	}
}

// SquatReport assembles the presentation document for a squat analysis. Each
// left/right angle pair is averaged and presented as a mean metric plus a
// consistency (std across repetitions) metric.
func SquatReport(a *squat.Analysis) (*Report, error) {
	var metrics []Metric
	for _, pair := range squatPairs() {
		right, left, err := pairSeries(a, pair)
		if err != nil {
			return nil, err
		}
		rightSc, leftSc := right.Reduce(), left.Reduce()
		mean := roundTo((rightSc.Value+leftSc.Value)/2, 0)
		std := roundTo((rightSc.Std+leftSc.Std)/2, 0)

		meanMetric := Metric{
			Name:   pair.name + "_mean",
			Label:  "Mean " + pair.label,
			Value:  mean,
			Colors: pair.band.Colors(),
		}
		switch pair.band {
		case BandAbove:
			meanMetric.MinLimit = roundTo(0.90*pair.min, 0)
			meanMetric.MaxLimit = pair.min
		case BandCentered:
			meanMetric.MinLimit = pair.min
			meanMetric.MaxLimit = pair.max
		}
		metrics = append(metrics, meanMetric)

		metrics = append(metrics, Metric{
			Name:     pair.name + "_std",
			Label:    "Std " + pair.label,
			Value:    std,
			Colors:   BandBelow.Colors(),
			MinLimit: squatStdMin,
			MaxLimit: squatStdMax,
		})
	}

	events := a.Events()
	last := len(events.Idx) - 1
	window := Window{
		StartIdx:  events.Idx[0][0],
		EndIdx:    events.Idx[last][1],
		StartTime: events.Times[0][0],
		EndTime:   events.Times[last][1],
	}

	return &Report{Window: window, Metrics: metrics}, nil
}

func pairSeries(a *squat.Analysis, pair squatPair) (right, left analysis.Series, err error) {
	if pair.rom {
		right, err = a.RangeOfMotion(pair.rightTo)
		if err != nil {
			return
		}
		left, err = a.RangeOfMotion(pair.leftTo)
		return
	}
	right, err = a.PeakAngle(pair.rightTo, squat.PeakMax)
	if err != nil {
		return
	}
	left, err = a.PeakAngle(pair.leftTo, squat.PeakMax)
	return
}
