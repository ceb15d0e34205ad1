package kinematics

import (
	"fmt"
	"math"
)

// Trim returns a copy of the trial truncated by the given durations, in
// seconds, from the start and end. Leading/trailing frames of a capture are
// often unreliable (subject entering or leaving the field of view with the
// pose estimator still reporting high confidence), so callers may discard
// them before segmentation. Zero durations return a copy sharing the same
// bounds.
func (t *Trial) Trim(startSeconds, endSeconds float64) (Provider, error) {
	if startSeconds < 0 || endSeconds < 0 {
		return nil, fmt.Errorf("trim durations must be non-negative, got start=%g end=%g", startSeconds, endSeconds)
	}

	lo := 0
	if startSeconds > 0 {
		// Last frame at or before the trim mark.
		for i, tv := range t.time {
			if round6(tv-t.time[0]-startSeconds) <= 0 {
				lo = i
			}
		}
	}

	hi := len(t.time)
	if endSeconds > 0 {
		mark := round6(t.time[len(t.time)-1] - endSeconds)
		hi = lo
		for i, tv := range t.time {
			if round6(tv) <= mark {
				hi = i + 1
			}
		}
	}

	if hi-lo < 2 {
		return nil, fmt.Errorf("trimming start=%gs end=%gs leaves %d frames", startSeconds, endSeconds, hi-lo)
	}

	markers := make(map[string][]Vec3, len(t.markers))
	for name, traj := range t.markers {
		markers[name] = append([]Vec3(nil), traj[lo:hi]...)
	}
	coords := make(map[string][]float64, len(t.coords))
	for name, vals := range t.coords {
		coords[name] = append([]float64(nil), vals[lo:hi]...)
	}
	names := append([]string(nil), t.coordNames...)

	return &Trial{
		time:       append([]float64(nil), t.time[lo:hi]...),
		markers:    markers,
		coords:     coords,
		coordNames: names,
	}, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
