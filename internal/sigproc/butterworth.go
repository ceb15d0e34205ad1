package sigproc

import (
	"fmt"
	"math"
)

// biquad is one second-order IIR section in direct form II transposed.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// Lowpass is a zero-phase Butterworth lowpass filter. It mirrors the usual
// motion-capture smoothing step: a 4th-order Butterworth applied forward and
// backward so filtered signals keep their phase.
type Lowpass struct {
	sections []biquad
}

// NewLowpass designs an order-4 Butterworth lowpass with the given cutoff and
// sampling rate, both in Hz. The cutoff must sit below the Nyquist frequency.
func NewLowpass(cutoffHz, sampleRateHz float64) (*Lowpass, error) {
	if cutoffHz <= 0 {
		return nil, fmt.Errorf("lowpass cutoff must be positive, got %g", cutoffHz)
	}
	if sampleRateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRateHz)
	}
	if cutoffHz >= sampleRateHz/2 {
		return nil, fmt.Errorf("lowpass cutoff %gHz is at or above Nyquist (%gHz)", cutoffHz, sampleRateHz/2)
	}

	// Butterworth pole quality factors for an order-4 cascade.
	qs := []float64{
		1 / (2 * math.Cos(math.Pi/8)),
		1 / (2 * math.Cos(3*math.Pi/8)),
	}

	// Bilinear transform with frequency pre-warping.
	w0 := 2 * math.Pi * cutoffHz / sampleRateHz
	sections := make([]biquad, 0, len(qs))
	for _, q := range qs {
		alpha := math.Sin(w0) / (2 * q)
		cosw0 := math.Cos(w0)
		a0 := 1 + alpha
		sections = append(sections, biquad{
			b0: (1 - cosw0) / 2 / a0,
			b1: (1 - cosw0) / a0,
			b2: (1 - cosw0) / 2 / a0,
			a1: -2 * cosw0 / a0,
			a2: (1 - alpha) / a0,
		})
	}
	return &Lowpass{sections: sections}, nil
}

// padLen is the odd-reflection padding applied on both ends before the
// forward-backward pass to suppress edge transients.
const padLen = 12

// FiltFilt applies the filter forward and backward over x and returns a new
// slice. Inputs shorter than the edge padding are returned unfiltered.
func (f *Lowpass) FiltFilt(x []float64) []float64 {
	if len(x) <= padLen {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}

	padded := oddReflect(x, padLen)
	for _, s := range f.sections {
		s.forward(padded)
		reverse(padded)
		s.forward(padded)
		reverse(padded)
	}
	return padded[padLen : len(padded)-padLen]
}

// forward runs the section in place over x with zero initial state.
func (s *biquad) forward(x []float64) {
	var z1, z2 float64
	for i, v := range x {
		out := s.b0*v + z1
		z1 = s.b1*v - s.a1*out + z2
		z2 = s.b2*v - s.a2*out
		x[i] = out
	}
}

// oddReflect pads x on both sides with the odd reflection about the end
// samples, the same edge treatment scipy's filtfilt uses.
func oddReflect(x []float64, n int) []float64 {
	out := make([]float64, 0, len(x)+2*n)
	for i := n; i >= 1; i-- {
		out = append(out, 2*x[0]-x[i])
	}
	out = append(out, x...)
	last := len(x) - 1
	for i := 1; i <= n; i++ {
		out = append(out, 2*x[last]-x[last-i])
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
