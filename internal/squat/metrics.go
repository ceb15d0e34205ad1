package squat

import (
	"math"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/units"
)

// squatDepth is the pelvis drop from the standing height to the bottom of
// each repetition.
func (a *Analysis) squatDepth() (analysis.Series, error) {
	pelvisTY, err := a.trial.Coordinate("pelvis_ty")
	if err != nil {
		return analysis.Series{}, err
	}
	out := make([]float64, a.NumRepetitions())
	for i, idx := range a.events.Idx {
		lo, hi := math.Inf(1), math.Inf(-1)
		for f := idx[0]; f <= idx[1]; f++ {
			lo = math.Min(lo, pelvisTY[f])
			hi = math.Max(hi, pelvisTY[f])
		}
		out[i] = hi - lo
	}
	return analysis.Series{Values: out, Unit: units.Meters}, nil
}

// trunkAngles computes, per frame, the trunk segment's inclination from
// vertical decomposed into the pelvis frame: sagittal (forward flexion,
// along the pelvis heading) and frontal (sideways lean, along the
// mediolateral axis). Angles in degrees, positive forward/rightward.
func (a *Analysis) trunkAngles() (sagittal, frontal []float64, err error) {
	rShoulder, err := a.trial.Marker(kinematics.MarkerRShoulder)
	if err != nil {
		return nil, nil, err
	}
	lShoulder, err := a.trial.Marker(kinematics.MarkerLShoulder)
	if err != nil {
		return nil, nil, err
	}
	rASIS, err := a.trial.Marker(kinematics.MarkerRASIS)
	if err != nil {
		return nil, nil, err
	}
	lASIS, err := a.trial.Marker(kinematics.MarkerLASIS)
	if err != nil {
		return nil, nil, err
	}
	rPSIS, err := a.trial.Marker(kinematics.MarkerRPSIS)
	if err != nil {
		return nil, nil, err
	}
	lPSIS, err := a.trial.Marker(kinematics.MarkerLPSIS)
	if err != nil {
		return nil, nil, err
	}

	n := a.trial.NumFrames()
	sagittal = make([]float64, n)
	frontal = make([]float64, n)
	for i := 0; i < n; i++ {
		midShoulder := kinematics.Midpoint(rShoulder[i], lShoulder[i])
		midASIS := kinematics.Midpoint(rASIS[i], lASIS[i])
		midPSIS := kinematics.Midpoint(rPSIS[i], lPSIS[i])
		pelvis := kinematics.Midpoint(midASIS, midPSIS)

		// Floor-plane pelvis axes.
		heading := midASIS.Sub(midPSIS)
		heading.Y = 0
		heading = heading.Unit()
		lateral := rASIS[i].Sub(lASIS[i])
		lateral.Y = 0
		lateral = lateral.Unit()

		trunk := midShoulder.Sub(pelvis)
		sagittal[i] = angleDeg(trunk.Dot(heading), trunk.Y)
		frontal[i] = angleDeg(trunk.Dot(lateral), trunk.Y)
	}
	return sagittal, frontal, nil
}

// trunkFlexion is the peak forward inclination of the trunk from vertical
// within each repetition.
func (a *Analysis) trunkFlexion() (analysis.Series, error) {
	sagittal, _, err := a.trunkAngles()
	if err != nil {
		return analysis.Series{}, err
	}
	return a.peakAbs(sagittal), nil
}

// trunkLean is the peak sideways inclination of the trunk from vertical
// within each repetition.
func (a *Analysis) trunkLean() (analysis.Series, error) {
	_, frontal, err := a.trunkAngles()
	if err != nil {
		return analysis.Series{}, err
	}
	return a.peakAbs(frontal), nil
}

// peakAbs reduces a per-frame angle trace to the largest magnitude within
// each repetition window, preserving its sign.
func (a *Analysis) peakAbs(angles []float64) analysis.Series {
	out := make([]float64, a.NumRepetitions())
	for i, idx := range a.events.Idx {
		peak := angles[idx[0]]
		for f := idx[0] + 1; f <= idx[1]; f++ {
			if math.Abs(angles[f]) > math.Abs(peak) {
				peak = angles[f]
			}
		}
		out[i] = peak
	}
	return analysis.Series{Values: out, Unit: units.Degrees}
}

// angleDeg is the inclination from vertical in degrees, signed by the
// horizontal component.
func angleDeg(horizontal, vertical float64) float64 {
	return math.Atan2(horizontal, vertical) * 180 / math.Pi
}
