package gait

import (
	"math"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/units"
)

// strideTime returns the duration of cycle i in seconds.
func (a *Analysis) strideTime(i int) float64 {
	return a.events.IpsiTime[i][2] - a.events.IpsiTime[i][0]
}

// strideLength is the forward displacement of the ipsilateral calcaneus over
// the cycle, plus the belt displacement on a treadmill.
func (a *Analysis) strideLength() (analysis.Series, error) {
	calc, err := a.rotatedCalcaneus(a.events.Leg)
	if err != nil {
		return analysis.Series{}, err
	}
	vals := make([]float64, a.NumCycles())
	for i, ips := range a.events.IpsiIdx {
		vals[i] = calc[ips[2]].X - calc[ips[0]].X + a.treadmillSpeed*a.strideTime(i)
	}
	return analysis.Series{Values: vals, Unit: units.Meters}, nil
}

// stepLength reports both sides: the contralateral step runs from the
// ipsilateral heel-strike to the contralateral one, the ipsilateral step
// from the contralateral heel-strike to the cycle-closing ipsilateral one.
func (a *Analysis) stepLength() (analysis.Series, error) {
	ips := a.events.Leg
	cont := ips.Opposite()
	calcIps, err := a.rotatedCalcaneus(ips)
	if err != nil {
		return analysis.Series{}, err
	}
	calcCont, err := a.rotatedCalcaneus(cont)
	if err != nil {
		return analysis.Series{}, err
	}

	n := a.NumCycles()
	sides := map[kinematics.Side][]float64{
		ips:  make([]float64, n),
		cont: make([]float64, n),
	}
	for i := range a.events.IpsiIdx {
		hs1, hs2 := a.events.IpsiIdx[i][0], a.events.IpsiIdx[i][2]
		contHS := a.events.ContraIdx[i][1]
		tHS1, tHS2 := a.events.IpsiTime[i][0], a.events.IpsiTime[i][2]
		tContHS := a.events.ContraTime[i][1]

		sides[cont][i] = calcCont[contHS].X - calcIps[hs1].X + a.treadmillSpeed*(tContHS-tHS1)
		sides[ips][i] = calcIps[hs2].X - calcCont[contHS].X + a.treadmillSpeed*(tHS2-tContHS)
	}
	return analysis.Series{Sides: sides, Unit: units.Meters}, nil
}

// stepLengthSymmetry is the right-over-left step length ratio per cycle,
// as a percentage.
func (a *Analysis) stepLengthSymmetry() (analysis.Series, error) {
	steps, err := a.stepLength()
	if err != nil {
		return analysis.Series{}, err
	}
	right := steps.Sides[kinematics.Right]
	left := steps.Sides[kinematics.Left]
	vals := make([]float64, len(right))
	for i := range right {
		vals[i] = right[i] / left[i] * 100
	}
	return analysis.Series{Values: vals, Unit: units.PercentRL}, nil
}

// gaitSpeed divides the center-of-mass displacement over the cycle by the
// stride time, plus the belt speed on a treadmill.
func (a *Analysis) gaitSpeed() (analysis.Series, error) {
	com := a.trial.CenterOfMass()
	vals := make([]float64, a.NumCycles())
	for i, ips := range a.events.IpsiIdx {
		vals[i] = com[ips[0]].Sub(com[ips[2]]).Norm()/a.strideTime(i) + a.treadmillSpeed
	}
	return analysis.Series{Values: vals, Unit: units.MetersPerSec}, nil
}

// cadence counts steps (both legs) per minute from the stride time.
func (a *Analysis) cadence() (analysis.Series, error) {
	vals := make([]float64, a.NumCycles())
	for i := range vals {
		vals[i] = 60 * 2 / a.strideTime(i)
	}
	return analysis.Series{Values: vals, Unit: units.StepsPerMin}, nil
}

// stepWidth is the mediolateral distance between the ankle joint centers,
// each averaged over 40-60% of its own stance phase, expressed in the
// cycle's gait frame.
func (a *Analysis) stepWidth() (analysis.Series, error) {
	frames, err := a.gaitFrames()
	if err != nil {
		return analysis.Series{}, err
	}
	ajcIps, err := a.ankleJointCenter(a.events.Leg)
	if err != nil {
		return analysis.Series{}, err
	}
	ajcCont, err := a.ankleJointCenter(a.events.Leg.Opposite())
	if err != nil {
		return analysis.Series{}, err
	}

	vals := make([]float64, a.NumCycles())
	for i := range a.events.IpsiIdx {
		hs1, to, hs2 := a.events.IpsiIdx[i][0], a.events.IpsiIdx[i][1], a.events.IpsiIdx[i][2]
		contTO, contHS := a.events.ContraIdx[i][0], a.events.ContraIdx[i][1]

		// Ipsilateral stance spans hs1..to. The contralateral foot is in
		// stance at both ends of the cycle; its in-cycle stance length is the
		// leading piece before its toe-off plus the trailing piece after its
		// heel-strike.
		ipsLen := float64(to - hs1)
		contLen := float64(contTO - hs1 + hs2 - contHS)

		ipsLo := hs1 + int(math.Round(0.4*ipsLen))
		ipsHi := hs1 + int(math.Round(0.6*ipsLen))
		contLo := min(contHS+int(math.Round(0.4*contLen)), hs2-1)
		contHi := min(contHS+int(math.Round(0.6*contLen)), hs2)

		v := markerWindowMean(ajcCont, contLo, contHi).Sub(markerWindowMean(ajcIps, ipsLo, ipsHi))
		vals[i] = math.Abs(frames[i].Apply(v).Z)
	}
	return analysis.Series{Values: vals, Unit: units.Meters}, nil
}

// ankleJointCenter returns the midpoint trajectory of a side's lateral and
// medial ankle markers.
func (a *Analysis) ankleJointCenter(side kinematics.Side) ([]kinematics.Vec3, error) {
	ankle, err := a.trial.Marker(kinematics.SideMarker(side, "ankle"))
	if err != nil {
		return nil, err
	}
	mankle, err := a.trial.Marker(kinematics.SideMarker(side, "mankle"))
	if err != nil {
		return nil, err
	}
	out := make([]kinematics.Vec3, len(ankle))
	for i := range ankle {
		out[i] = kinematics.Midpoint(ankle[i], mankle[i])
	}
	return out, nil
}

// markerWindowMean averages traj over [lo, hi). A degenerate window falls
// back to the single frame at lo.
func markerWindowMean(traj []kinematics.Vec3, lo, hi int) kinematics.Vec3 {
	if hi <= lo {
		return traj[lo]
	}
	var sum kinematics.Vec3
	for f := lo; f < hi; f++ {
		sum = sum.Add(traj[f])
	}
	return sum.Scale(1 / float64(hi-lo))
}

// stanceTime is heel-strike to toe-off of the ipsilateral foot.
func (a *Analysis) stanceTime() (analysis.Series, error) {
	vals := make([]float64, a.NumCycles())
	for i, t := range a.events.IpsiTime {
		vals[i] = t[1] - t[0]
	}
	return analysis.Series{Values: vals, Unit: units.Seconds}, nil
}

// swingTime is toe-off to the next heel-strike of the ipsilateral foot.
func (a *Analysis) swingTime() (analysis.Series, error) {
	vals := make([]float64, a.NumCycles())
	for i, t := range a.events.IpsiTime {
		vals[i] = t[2] - t[1]
	}
	return analysis.Series{Values: vals, Unit: units.Seconds}, nil
}

// doubleSupportTime is the share of the gait cycle with both feet on the
// ground: ipsilateral stance minus contralateral swing, over stride time.
func (a *Analysis) doubleSupportTime() (analysis.Series, error) {
	vals := make([]float64, a.NumCycles())
	for i := range vals {
		stance := a.events.IpsiTime[i][1] - a.events.IpsiTime[i][0]
		contSwing := a.events.ContraTime[i][1] - a.events.ContraTime[i][0]
		vals[i] = (stance - contSwing) / a.strideTime(i) * 100
	}
	return analysis.Series{Values: vals, Unit: units.Percent}, nil
}

// singleSupportTime is the complement of double support.
func (a *Analysis) singleSupportTime() (analysis.Series, error) {
	double, err := a.doubleSupportTime()
	if err != nil {
		return analysis.Series{}, err
	}
	vals := make([]float64, len(double.Values))
	for i, v := range double.Values {
		vals[i] = 100 - v
	}
	return analysis.Series{Values: vals, Unit: units.Percent}, nil
}

// treadmillSpeedSeries exposes the per-cycle belt speed estimates.
func (a *Analysis) treadmillSpeedSeries() (analysis.Series, error) {
	return analysis.Series{
		Values: append([]float64(nil), a.treadmillSpeeds...),
		Unit:   units.MetersPerSec,
	}, nil
}

// midswingAnkleVectors finds, per cycle, the swing frame where the ankles
// pass each other: the smallest forward distance between the ankle markers
// inside the swing phase, expressed in the cycle's gait frame. Returns the
// frame index and the gait-frame ankle vector at that index.
func (a *Analysis) midswingAnkleVectors() ([]int, []kinematics.Vec3, error) {
	frames, err := a.gaitFrames()
	if err != nil {
		return nil, nil, err
	}
	ankleIps, err := a.trial.Marker(kinematics.SideMarker(a.events.Leg, "ankle"))
	if err != nil {
		return nil, nil, err
	}
	ankleCont, err := a.trial.Marker(kinematics.SideMarker(a.events.Leg.Opposite(), "ankle"))
	if err != nil {
		return nil, nil, err
	}

	idxs := make([]int, a.NumCycles())
	vecs := make([]kinematics.Vec3, a.NumCycles())
	for i, ips := range a.events.IpsiIdx {
		to, hs2 := ips[1], ips[2]
		best := to
		bestVec := frames[i].Apply(ankleIps[to].Sub(ankleCont[to]))
		for f := to + 1; f < hs2; f++ {
			v := frames[i].Apply(ankleIps[f].Sub(ankleCont[f]))
			if math.Abs(v.X) < math.Abs(bestVec.X) {
				best, bestVec = f, v
			}
		}
		idxs[i] = best
		vecs[i] = bestVec
	}
	return idxs, vecs, nil
}

// midswingDorsiflexionAngle samples the ipsilateral ankle dorsiflexion angle
// at the midswing ankle crossing.
func (a *Analysis) midswingDorsiflexionAngle() (analysis.Series, error) {
	idxs, _, err := a.midswingAnkleVectors()
	if err != nil {
		return analysis.Series{}, err
	}
	angle, err := a.trial.Coordinate("ankle_angle_" + string(a.events.Leg))
	if err != nil {
		return analysis.Series{}, err
	}
	vals := make([]float64, len(idxs))
	for i, idx := range idxs {
		vals[i] = angle[idx]
	}
	return analysis.Series{Values: vals, Unit: units.Degrees}, nil
}

// midswingAnkleHeightDiff is the vertical clearance of the swing ankle above
// the stance ankle at the midswing crossing.
func (a *Analysis) midswingAnkleHeightDiff() (analysis.Series, error) {
	_, vecs, err := a.midswingAnkleVectors()
	if err != nil {
		return analysis.Series{}, err
	}
	vals := make([]float64, len(vecs))
	for i, v := range vecs {
		vals[i] = v.Y
	}
	return analysis.Series{Values: vals, Unit: units.Meters}, nil
}

// peakAngleFunc builds a calculator for the maximum of a joint coordinate
// within each cycle window.
func (a *Analysis) peakAngleFunc(coord string) analysis.MetricFunc {
	return func() (analysis.Series, error) {
		vals, err := a.trial.Coordinate(coord)
		if err != nil {
			return analysis.Series{}, err
		}
		out := make([]float64, a.NumCycles())
		for i, ips := range a.events.IpsiIdx {
			peak := math.Inf(-1)
			for f := ips[0]; f <= ips[2]; f++ {
				peak = math.Max(peak, vals[f])
			}
			out[i] = peak
		}
		return analysis.Series{Values: out, Unit: units.Degrees}, nil
	}
}

// romFunc builds a calculator for the peak-to-peak range of a joint
// coordinate within each cycle window.
func (a *Analysis) romFunc(coord string) analysis.MetricFunc {
	return func() (analysis.Series, error) {
		vals, err := a.trial.Coordinate(coord)
		if err != nil {
			return analysis.Series{}, err
		}
		out := make([]float64, a.NumCycles())
		for i, ips := range a.events.IpsiIdx {
			lo, hi := math.Inf(1), math.Inf(-1)
			for f := ips[0]; f <= ips[2]; f++ {
				lo = math.Min(lo, vals[f])
				hi = math.Max(hi, vals[f])
			}
			out[i] = hi - lo
		}
		return analysis.Series{Values: out, Unit: units.Degrees}, nil
	}
}
