package analysis

import (
	"math"

	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/sigproc"
)

// NormalizedCurves holds joint-coordinate traces resampled onto a common
// 0-100% cycle axis so cycles or repetitions of different durations can be
// averaged and overlaid.
type NormalizedCurves struct {
	// PercentCycle is the shared x axis, 0..100 in 1% steps.
	PercentCycle []float64 `json:"percent_cycle"`

	// Mean and Std aggregate across cycles per coordinate. Std is nil when
	// fewer than three cycles were available.
	Mean map[string][]float64 `json:"mean"`
	Std  map[string][]float64 `json:"std,omitempty"`

	// Cycles holds the individual resampled traces, one map per cycle.
	Cycles []map[string][]float64 `json:"cycles"`
}

// NormalizeWindows resamples every joint coordinate of the trial over the
// given frame windows (inclusive bounds) onto the common cycle axis.
func NormalizeWindows(trial kinematics.Provider, windows [][2]int) (*NormalizedCurves, error) {
	names := trial.CoordinateNames()
	out := &NormalizedCurves{
		PercentCycle: sigproc.Linspace(0, 100, sigproc.CycleSamples),
		Mean:         make(map[string][]float64, len(names)),
		Cycles:       make([]map[string][]float64, 0, len(windows)),
	}

	for _, w := range windows {
		cycle := make(map[string][]float64, len(names))
		for _, name := range names {
			vals, err := trial.Coordinate(name)
			if err != nil {
				return nil, err
			}
			norm, err := sigproc.NormalizeCycle(vals[w[0] : w[1]+1])
			if err != nil {
				return nil, err
			}
			cycle[name] = norm
		}
		out.Cycles = append(out.Cycles, cycle)
	}

	n := float64(len(out.Cycles))
	for _, name := range names {
		mean := make([]float64, sigproc.CycleSamples)
		for _, cycle := range out.Cycles {
			for i, v := range cycle[name] {
				mean[i] += v
			}
		}
		for i := range mean {
			mean[i] /= n
		}
		out.Mean[name] = mean
	}

	// A standard deviation over one or two cycles is not meaningful.
	if len(out.Cycles) > 2 {
		out.Std = make(map[string][]float64, len(names))
		for _, name := range names {
			std := make([]float64, sigproc.CycleSamples)
			for _, cycle := range out.Cycles {
				for i, v := range cycle[name] {
					d := v - out.Mean[name][i]
					std[i] += d * d
				}
			}
			for i := range std {
				std[i] = math.Sqrt(std[i] / n)
			}
			out.Std[name] = std
		}
	}
	return out, nil
}
