package report

import (
	"github.com/gaitlab/stride.report/internal/gait"
	"github.com/gaitlab/stride.report/internal/units"
)

// Info strings shown next to each gait metric.
const (
	gaitSpeedInfo = "Gait speed is computed by dividing the displacement of the center of mass " +
		"by the time it takes to move that distance. A speed larger than 1.12 m/s is considered good."
	stepWidthInfo = "Step width is computed as the average distance between the ankle joint centers " +
		"in the mediolateral direction during 40-60% of the stance phase. A step width between 4.3 " +
		"and 7.4 times the subject's height is considered good."
	strideLengthInfo = "Stride length is computed as the distance between the calcaneus positions at " +
		"the beginning and end of the gait cycle. A stride length larger than 0.45 times the " +
		"subject's height is considered good."
	cadenceInfo = "Cadence is computed as the number of gait cycles (left and right) per minute. " +
		"A cadence larger than 100 is considered good."
	doubleSupportInfo = "Double support time is computed as the duration when both feet are in contact " +
		"with the ground. A double support time smaller than 35% of the gait cycle is considered good."
	symmetryInfo = "Step length symmetry is computed as the ratio between the right and left step " +
		"lengths. A step length symmetry between 90 and 110 is considered good."
)

// gaitSpecs builds the presentation table for the standard gait scalars.
// Distance thresholds scale with the subject's height in meters.
func gaitSpecs(subjectHeightM float64) []spec {
	return []spec{
		{
			name: "gait_speed", label: "Gait speed (m/s)", info: gaitSpeedInfo,
			decimal: 2, multiplier: 1, band: BandAbove, min: 67.0 / 60.0,
		},
		{
			name: "stride_length", label: "Stride length (m)", info: strideLengthInfo,
			decimal: 2, multiplier: 1, band: BandAbove, min: 0.45 * subjectHeightM,
		},
		{
			name: "step_width", label: "Step width (cm)", info: stepWidthInfo,
			decimal: 1, multiplier: units.DisplayMultiplier(units.Meters, units.Centimeters), band: BandCentered,
			min: 4.3 * subjectHeightM, max: 7.4 * subjectHeightM,
		},
		{
			name: "cadence", label: "Cadence (steps/min)", info: cadenceInfo,
			decimal: 1, multiplier: 1, band: BandAbove, min: 100,
		},
		{
			name: "double_support_time", label: "Double support (% gait cycle)", info: doubleSupportInfo,
			decimal: 1, multiplier: 1, band: BandBelow, min: 35,
		},
		{
			name: "step_length_symmetry", label: "Step length symmetry (%, R/L)", info: symmetryInfo,
			decimal: 1, multiplier: 1, band: BandCentered, min: 90, max: 110,
		},
	}
}

// GaitReportMetricNames lists the scalars the gait report presents.
func GaitReportMetricNames() []string {
	return []string{
		"gait_speed", "stride_length", "step_width", "cadence",
		"double_support_time", "step_length_symmetry",
	}
}

// GaitReport assembles the presentation document for a gait analysis.
// subjectHeightM comes from the session metadata and scales the distance
// thresholds.
func GaitReport(a *gait.Analysis, subjectHeightM float64) (*Report, error) {
	scalars, err := a.Scalars(GaitReportMetricNames())
	if err != nil {
		return nil, err
	}

	events := a.Events()
	last := len(events.IpsiIdx) - 1
	window := Window{
		StartIdx:  events.IpsiIdx[last][0],
		EndIdx:    events.IpsiIdx[0][2],
		StartTime: events.IpsiTime[last][0],
		EndTime:   events.IpsiTime[0][2],
	}

	return &Report{
		Window:  window,
		Metrics: build(scalars, gaitSpecs(subjectHeightM)),
	}, nil
}
