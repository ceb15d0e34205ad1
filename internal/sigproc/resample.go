package sigproc

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// CycleSamples is the number of samples a cycle-normalized trace carries:
// 0..100% of the cycle in 1% steps.
const CycleSamples = 101

// NormalizeCycle linearly resamples a per-cycle trace onto CycleSamples
// points spanning 0-100% of the cycle, so traces from cycles of different
// durations can be averaged and compared sample by sample.
func NormalizeCycle(x []float64) ([]float64, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("cannot time-normalize trace of %d samples", len(x))
	}

	xs := make([]float64, len(x))
	step := 100 / float64(len(x)-1)
	for i := range xs {
		xs[i] = float64(i) * step
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, x); err != nil {
		return nil, fmt.Errorf("time normalization fit: %w", err)
	}

	out := make([]float64, CycleSamples)
	for i := range out {
		out[i] = pl.Predict(float64(i))
	}
	// Guard the final sample against floating point drift at the right edge.
	out[CycleSamples-1] = x[len(x)-1]
	return out, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
