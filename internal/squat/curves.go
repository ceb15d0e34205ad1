package squat

import (
	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/sigproc"
)

// NormalizedCoordinates resamples every joint coordinate over each
// repetition window onto the common 0-100% cycle axis.
func (a *Analysis) NormalizedCoordinates() (*analysis.NormalizedCurves, error) {
	return analysis.NormalizeWindows(a.trial, a.events.Idx)
}

// SegmentedCenterOfMass returns the center-of-mass trajectory sliced per
// repetition.
func (a *Analysis) SegmentedCenterOfMass() [][]kinematics.Vec3 {
	com := a.trial.CenterOfMass()
	out := make([][]kinematics.Vec3, a.NumRepetitions())
	for i, idx := range a.events.Idx {
		out[i] = append([]kinematics.Vec3(nil), com[idx[0]:idx[1]+1]...)
	}
	return out
}

// NormalizedCenterOfMass resamples each repetition's center-of-mass
// trajectory onto the common cycle axis, one [x, y, z] triple of traces per
// repetition.
func (a *Analysis) NormalizedCenterOfMass() ([][3][]float64, error) {
	com := a.trial.CenterOfMass()
	out := make([][3][]float64, a.NumRepetitions())
	for i, idx := range a.events.Idx {
		window := com[idx[0] : idx[1]+1]
		xs := make([]float64, len(window))
		ys := make([]float64, len(window))
		zs := make([]float64, len(window))
		for f, v := range window {
			xs[f], ys[f], zs[f] = v.X, v.Y, v.Z
		}
		for axis, trace := range [][]float64{xs, ys, zs} {
			norm, err := sigproc.NormalizeCycle(trace)
			if err != nil {
				return nil, err
			}
			out[i][axis] = norm
		}
	}
	return out, nil
}
