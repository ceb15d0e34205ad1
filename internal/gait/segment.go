package gait

import (
	"fmt"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/monitoring"
	"github.com/gaitlab/stride.report/internal/sigproc"
)

// prominenceLadder holds the peak-prominence thresholds tried in order.
// Peaks are less prominent with pathological or slow gait, so detection backs
// off before giving up.
var prominenceLadder = []float64{0.3, 0.25, 0.2}

// footSignals are the 1D anterior-posterior projections peak detection runs
// on: calcaneus peaks mark heel-strikes, negated toe peaks mark toe-offs.
type footSignals struct {
	rCalc, lCalc []float64
	rToe, lToe   []float64
}

// gaitPeaks are the raw detected event streams for both legs.
type gaitPeaks struct {
	rHS, lHS, rTO, lTO []int
}

// segmentWalking detects gait cycles for the requested leg, working backward
// from the end of the trial. nCycles == -1 keeps every detectable cycle.
func segmentWalking(trial kinematics.Provider, leg LegSelector, nCycles int) (*CycleEvents, error) {
	sig, err := footProjections(trial)
	if err != nil {
		return nil, err
	}

	var peaks gaitPeaks
	for i, prom := range prominenceLadder {
		peaks = detectGaitPeaks(sig, prom)
		if correctEventOrder(peaks) {
			break
		}
		if i == len(prominenceLadder)-1 {
			return nil, &analysis.SegmentationError{
				Reason: "gait events are not in a physiological order at any prominence threshold; " +
					"consider trimming the trial with the trimming options",
			}
		}
		monitoring.Logf("gait events out of order at prominence %.2f; retrying with %.2f",
			prom, prominenceLadder[i+1])
	}

	side, err := chooseLeg(leg, peaks)
	if err != nil {
		return nil, err
	}

	hsIps, toIps := peaks.rHS, peaks.rTO
	hsCont, toCont := peaks.lHS, peaks.lTO
	if side == kinematics.Left {
		hsIps, toIps = peaks.lHS, peaks.lTO
		hsCont, toCont = peaks.rHS, peaks.rTO
	}

	available := len(hsIps) - 1
	if nCycles > available {
		monitoring.Logf("requested %d gait cycles but only %d were found; proceeding with %d",
			nCycles, available, available)
		nCycles = available
	}
	if nCycles == -1 {
		nCycles = available
		monitoring.Logf("processing %d gait cycles, leg: %s", nCycles, side)
	}
	if nCycles < 1 {
		return nil, &analysis.SegmentationError{Reason: "not enough gait cycles found"}
	}

	events := &CycleEvents{Leg: side}
	for i := 0; i < nCycles; i++ {
		hs1 := hsIps[len(hsIps)-i-2]
		hs2 := hsIps[len(hsIps)-i-1]

		to, ok := lastEventInside(toIps, hs1, hs2)
		if !ok {
			monitoring.Logf("no ipsilateral toe-off inside cycle window %d cycles from the end; skipping", i+1)
			continue
		}
		contTO, okTO := lastEventInside(toCont, hs1, hs2)
		contHS, okHS := lastEventInside(hsCont, hs1, hs2)
		if !okTO || !okHS {
			// Noisy trials with the subject far from the camera can miss
			// contralateral peaks; drop the cycle rather than the trial.
			monitoring.Logf("no contralateral gait event inside cycle window %d cycles from the end; skipping", i+1)
			continue
		}

		events.IpsiIdx = append(events.IpsiIdx, [3]int{hs1, to, hs2})
		events.ContraIdx = append(events.ContraIdx, [2]int{contTO, contHS})
	}

	if events.NumCycles() == 0 {
		return nil, &analysis.SegmentationError{Reason: fmt.Sprintf("no good cycles for %s leg", side)}
	}

	timeVec := trial.Time()
	for i := range events.IpsiIdx {
		ips := events.IpsiIdx[i]
		cont := events.ContraIdx[i]
		events.IpsiTime = append(events.IpsiTime, [3]float64{timeVec[ips[0]], timeVec[ips[1]], timeVec[ips[2]]})
		events.ContraTime = append(events.ContraTime, [2]float64{timeVec[cont[0]], timeVec[cont[1]]})
	}

	if err := events.validate(); err != nil {
		return nil, &analysis.SegmentationError{Reason: err.Error()}
	}
	return events, nil
}

// footProjections projects the calcaneus and toe markers of each foot,
// relative to the same-side PSIS, onto the floor-plane heading direction.
func footProjections(trial kinematics.Provider) (*footSignals, error) {
	names := []string{
		kinematics.MarkerRCalc, kinematics.MarkerRToe, kinematics.MarkerRPSIS, kinematics.MarkerRASIS,
		kinematics.MarkerLCalc, kinematics.MarkerLToe, kinematics.MarkerLPSIS, kinematics.MarkerLASIS,
	}
	markers := make(map[string][]kinematics.Vec3, len(names))
	for _, name := range names {
		traj, err := trial.Marker(name)
		if err != nil {
			return nil, err
		}
		markers[name] = traj
	}

	n := trial.NumFrames()
	sig := &footSignals{
		rCalc: make([]float64, n),
		lCalc: make([]float64, n),
		rToe:  make([]float64, n),
		lToe:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		midPSIS := kinematics.Midpoint(markers[kinematics.MarkerRPSIS][i], markers[kinematics.MarkerLPSIS][i])
		midASIS := kinematics.Midpoint(markers[kinematics.MarkerRASIS][i], markers[kinematics.MarkerLASIS][i])
		heading := midASIS.Sub(midPSIS)
		heading.Y = 0
		heading = heading.Unit()

		sig.rCalc[i] = heading.Dot(markers[kinematics.MarkerRCalc][i].Sub(markers[kinematics.MarkerRPSIS][i]))
		sig.rToe[i] = heading.Dot(markers[kinematics.MarkerRToe][i].Sub(markers[kinematics.MarkerRPSIS][i]))
		sig.lCalc[i] = heading.Dot(markers[kinematics.MarkerLCalc][i].Sub(markers[kinematics.MarkerLPSIS][i]))
		sig.lToe[i] = heading.Dot(markers[kinematics.MarkerLToe][i].Sub(markers[kinematics.MarkerLPSIS][i]))
	}
	return sig, nil
}

// detectGaitPeaks finds heel-strikes as maxima of the calcaneus projection
// and toe-offs as maxima of the negated toe projection.
func detectGaitPeaks(sig *footSignals, prominence float64) gaitPeaks {
	opts := sigproc.PeakOptions{MinProminence: prominence}
	return gaitPeaks{
		rHS: sigproc.FindPeaks(sig.rCalc, opts),
		lHS: sigproc.FindPeaks(sig.lCalc, opts),
		rTO: sigproc.FindPeaks(negate(sig.rToe), opts),
		lTO: sigproc.FindPeaks(negate(sig.lToe), opts),
	}
}

// correctEventOrder checks that the four event streams interleave in the
// fixed physiological cycle rHS→lTO→lHS→rTO→rHS… (or its left-first mirror,
// which is the same cyclic order entered at a different phase).
func correctEventOrder(peaks gaitPeaks) bool {
	expected := map[string]string{
		"rHS": "lTO",
		"lTO": "lHS",
		"lHS": "rTO",
		"rTO": "rHS",
	}

	streams := map[string][]int{
		"rHS": peaks.rHS, "rTO": peaks.rTO,
		"lHS": peaks.lHS, "lTO": peaks.lTO,
	}

	// Consume events in global time order, checking each transition.
	current, ok := earliestStream(streams)
	if !ok {
		return true // no events at all; nothing to contradict
	}
	for {
		streams[current] = streams[current][1:]
		next, ok := earliestStream(streams)
		if !ok {
			return true
		}
		if next != expected[current] {
			return false
		}
		current = next
	}
}

// earliestStream returns the name of the non-empty stream with the smallest
// head value.
func earliestStream(streams map[string][]int) (string, bool) {
	best := ""
	bestVal := 0
	for _, name := range []string{"rHS", "rTO", "lHS", "lTO"} {
		s := streams[name]
		if len(s) == 0 {
			continue
		}
		if best == "" || s[0] < bestVal {
			best = name
			bestVal = s[0]
		}
	}
	return best, best != ""
}

// chooseLeg resolves the auto selector to whichever foot heel-strikes later.
func chooseLeg(sel LegSelector, peaks gaitPeaks) (kinematics.Side, error) {
	switch sel {
	case LegLeft:
		return kinematics.Left, nil
	case LegRight:
		return kinematics.Right, nil
	case LegAuto:
		if len(peaks.rHS) == 0 || len(peaks.lHS) == 0 {
			return "", &analysis.SegmentationError{Reason: "no heel-strikes detected for one or both legs"}
		}
		if peaks.rHS[len(peaks.rHS)-1] > peaks.lHS[len(peaks.lHS)-1] {
			return kinematics.Right, nil
		}
		return kinematics.Left, nil
	default:
		return "", fmt.Errorf("invalid leg selector %q", sel)
	}
}

// lastEventInside finds the latest event strictly inside (lo, hi).
func lastEventInside(events []int, lo, hi int) (int, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] > lo && events[i] < hi {
			return events[i], true
		}
	}
	return 0, false
}

func negate(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = -v
	}
	return out
}
