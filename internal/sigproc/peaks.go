// Package sigproc contains the numeric signal kernels shared by the gait and
// squat analyses: prominence-based peak detection, zero-phase lowpass
// filtering, and time normalization of per-cycle traces.
package sigproc

import (
	"math"
	"sort"
)

// PeakOptions controls FindPeaks. Zero values disable the corresponding
// condition, matching the behaviour of leaving it unset.
type PeakOptions struct {
	// MinProminence is the minimum vertical drop required on both sides of a
	// candidate before it counts as a real local maximum.
	MinProminence float64

	// MinHeight is the minimum absolute signal value at the peak.
	MinHeight float64

	// MinDistance is the minimum index separation between accepted peaks.
	// When two candidates are closer, the smaller one is dropped.
	MinDistance int
}

// Peak describes one detected local maximum.
type Peak struct {
	Index      int
	Height     float64
	Prominence float64
}

// FindPeaks detects local maxima of x subject to the given options and
// returns their indices in ascending order. Plateaus report their midpoint.
func FindPeaks(x []float64, opts PeakOptions) []int {
	peaks := findLocalMaxima(x)

	if opts.MinHeight > 0 {
		kept := peaks[:0]
		for _, p := range peaks {
			if x[p] >= opts.MinHeight {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}

	if opts.MinProminence > 0 {
		kept := peaks[:0]
		for _, p := range peaks {
			if prominence(x, p) >= opts.MinProminence {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}

	if opts.MinDistance > 1 {
		peaks = enforceDistance(x, peaks, opts.MinDistance)
	}

	return peaks
}

// findLocalMaxima returns indices of strict local maxima. A flat-topped
// maximum contributes the midpoint of its plateau.
func findLocalMaxima(x []float64) []int {
	var peaks []int
	i := 1
	for i < len(x)-1 {
		if x[i] <= x[i-1] {
			i++
			continue
		}
		// Ascent confirmed; walk any plateau.
		j := i
		for j < len(x)-1 && x[j+1] == x[j] {
			j++
		}
		if j < len(x)-1 && x[j+1] < x[j] {
			peaks = append(peaks, (i+j)/2)
		}
		i = j + 1
	}
	return peaks
}

// prominence computes the topographic prominence of the peak at index p:
// the drop from the peak to the higher of the two bases, where each base is
// the minimum between the peak and the nearest higher terrain (or the signal
// boundary).
func prominence(x []float64, p int) float64 {
	left := math.Inf(1)
	for i := p - 1; i >= 0; i-- {
		if x[i] > x[p] {
			break
		}
		if x[i] < left {
			left = x[i]
		}
	}
	right := math.Inf(1)
	for i := p + 1; i < len(x); i++ {
		if x[i] > x[p] {
			break
		}
		if x[i] < right {
			right = x[i]
		}
	}
	base := math.Max(left, right)
	if math.IsInf(base, 1) {
		// Signal is monotonic around the peak on both sides.
		base = math.Min(left, right)
	}
	if math.IsInf(base, 1) {
		return 0
	}
	return x[p] - base
}

// enforceDistance keeps the tallest peaks first and drops any remaining peak
// closer than minDistance to one already kept.
func enforceDistance(x []float64, peaks []int, minDistance int) []int {
	order := make([]int, len(peaks))
	copy(order, peaks)
	sort.Slice(order, func(a, b int) bool { return x[order[a]] > x[order[b]] })

	removed := make(map[int]bool, len(peaks))
	for _, p := range order {
		if removed[p] {
			continue
		}
		for _, q := range peaks {
			if q == p || removed[q] {
				continue
			}
			if abs(q-p) < minDistance {
				removed[q] = true
			}
		}
	}

	kept := peaks[:0]
	for _, p := range peaks {
		if !removed[p] {
			kept = append(kept, p)
		}
	}
	return kept
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
