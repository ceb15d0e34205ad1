package gait

import (
	"github.com/gaitlab/stride.report/internal/kinematics"
)

// Rotation is a per-cycle gait frame: an orthonormal basis with X the forward
// heading, Y vertical, and Z mediolateral. Apply expresses a world-frame
// vector in that basis.
type Rotation struct {
	X, Y, Z kinematics.Vec3
}

// Apply rotates a world-frame vector into the gait frame.
func (r Rotation) Apply(v kinematics.Vec3) kinematics.Vec3 {
	return kinematics.Vec3{X: v.Dot(r.X), Y: v.Dot(r.Y), Z: v.Dot(r.Z)}
}

// gaitFrames builds one rotation per cycle. The forward axis follows the
// pelvis-center displacement over the cycle for overground trials; on a
// treadmill the pelvis barely translates, so the swing displacement of the
// ipsilateral ankle is used instead. The mediolateral seed is the mean
// left-to-right ASIS vector over the cycle window; vertical and final
// mediolateral axes come from re-orthogonalizing crosses.
func gaitFrames(trial kinematics.Provider, events *CycleEvents, treadmillSpeed float64) ([]Rotation, error) {
	rASIS, err := trial.Marker(kinematics.MarkerRASIS)
	if err != nil {
		return nil, err
	}
	lASIS, err := trial.Marker(kinematics.MarkerLASIS)
	if err != nil {
		return nil, err
	}
	rPSIS, err := trial.Marker(kinematics.MarkerRPSIS)
	if err != nil {
		return nil, err
	}
	lPSIS, err := trial.Marker(kinematics.MarkerLPSIS)
	if err != nil {
		return nil, err
	}
	ankle, err := trial.Marker(kinematics.SideMarker(events.Leg, "ankle"))
	if err != nil {
		return nil, err
	}

	frames := make([]Rotation, events.NumCycles())
	for i, ips := range events.IpsiIdx {
		hs1, to, hs2 := ips[0], ips[1], ips[2]

		var x kinematics.Vec3
		if treadmillSpeed == 0 {
			x = pelvisCenter(rASIS[hs2], lASIS[hs2], rPSIS[hs2], lPSIS[hs2]).
				Sub(pelvisCenter(rASIS[hs1], lASIS[hs1], rPSIS[hs1], lPSIS[hs1])).Unit()
		} else {
			x = ankle[hs2].Sub(ankle[to]).Unit()
		}

		var zSeed kinematics.Vec3
		for f := hs1; f < hs2; f++ {
			zSeed = zSeed.Add(rASIS[f].Sub(lASIS[f]))
		}
		zSeed = zSeed.Scale(1 / float64(hs2-hs1)).Unit()

		y := zSeed.Cross(x)
		z := x.Cross(y)
		frames[i] = Rotation{X: x, Y: y, Z: z}
	}
	return frames, nil
}

func pelvisCenter(rASIS, lASIS, rPSIS, lPSIS kinematics.Vec3) kinematics.Vec3 {
	return rASIS.Add(lASIS).Add(rPSIS).Add(lPSIS).Scale(0.25)
}

// rotatePerCycle copies a trajectory and rotates each cycle's window,
// inclusive of both heel-strikes, into that cycle's gait frame. Cycles are
// applied from the earliest to the latest so the shared boundary frame (the
// second heel-strike of one cycle, the first of the next) ends up expressed
// in the later cycle's frame. The frames change slowly from step to step, so
// the overlap is an accepted approximation.
func rotatePerCycle(traj []kinematics.Vec3, events *CycleEvents, frames []Rotation) []kinematics.Vec3 {
	out := append([]kinematics.Vec3(nil), traj...)
	// Events are stored backward from the end of the trial; iterate in
	// reverse for chronological order.
	for i := events.NumCycles() - 1; i >= 0; i-- {
		hs1, hs2 := events.IpsiIdx[i][0], events.IpsiIdx[i][2]
		for f := hs1; f <= hs2; f++ {
			out[f] = frames[i].Apply(traj[f])
		}
	}
	return out
}
