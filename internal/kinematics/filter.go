package kinematics

import (
	"github.com/gaitlab/stride.report/internal/sigproc"
)

// trialLowpass adapts the sigproc zero-phase Butterworth to marker and
// coordinate series.
type trialLowpass struct {
	lp *sigproc.Lowpass
}

func newTrialLowpass(cutoffHz, sampleRateHz float64) (*trialLowpass, error) {
	lp, err := sigproc.NewLowpass(cutoffHz, sampleRateHz)
	if err != nil {
		return nil, err
	}
	return &trialLowpass{lp: lp}, nil
}

func (f *trialLowpass) filterScalar(x []float64) []float64 {
	return f.lp.FiltFilt(x)
}

func (f *trialLowpass) filterVec3(traj []Vec3) []Vec3 {
	xs := make([]float64, len(traj))
	ys := make([]float64, len(traj))
	zs := make([]float64, len(traj))
	for i, v := range traj {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	xs = f.lp.FiltFilt(xs)
	ys = f.lp.FiltFilt(ys)
	zs = f.lp.FiltFilt(zs)
	out := make([]Vec3, len(traj))
	for i := range out {
		out[i] = Vec3{xs[i], ys[i], zs[i]}
	}
	return out
}
