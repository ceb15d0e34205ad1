package squat

import (
	"fmt"
	"math"

	"github.com/gaitlab/stride.report/internal/analysis"
	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/units"
)

// PeakType selects whether a peak-angle metric reports the maximum or
// minimum of a coordinate within each repetition.
type PeakType string

const (
	PeakMax PeakType = "maximum"
	PeakMin PeakType = "minimum"
)

// Config carries the construction parameters of a squat analysis.
type Config struct {
	// NumRepetitions limits the analysis to the last N repetitions of the
	// trial. -1 keeps all.
	NumRepetitions int `json:"n_repetitions"`

	// LowpassCutoffHz smooths marker and coordinate data at load time.
	// -1 disables filtering. Consumed by the trial loader, not by New.
	LowpassCutoffHz float64 `json:"lowpass_cutoff_frequency"`

	// TrimStart and TrimEnd discard that many seconds of the trial before
	// segmentation.
	TrimStart float64 `json:"trimming_start"`
	TrimEnd   float64 `json:"trimming_end"`
}

// DefaultConfig returns the construction defaults: all repetitions, no
// filtering, no trimming.
func DefaultConfig() Config {
	return Config{NumRepetitions: -1, LowpassCutoffHz: -1}
}

// Analysis segments one squat trial into repetitions and exposes the
// per-repetition metric calculators. Constructed once per trial, read-only
// afterwards, single-threaded use only.
type Analysis struct {
	trial  kinematics.Provider
	events *RepetitionEvents

	registry *analysis.Registry
}

// New trims and segments a squat trial.
func New(trial kinematics.Provider, cfg Config) (*Analysis, error) {
	if cfg.TrimStart > 0 || cfg.TrimEnd > 0 {
		trimmed, err := trial.Trim(cfg.TrimStart, cfg.TrimEnd)
		if err != nil {
			return nil, fmt.Errorf("trim trial: %w", err)
		}
		trial = trimmed
	}

	events, err := segmentSquat(trial, cfg.NumRepetitions)
	if err != nil {
		return nil, err
	}

	a := &Analysis{trial: trial, events: events}
	a.registry = analysis.NewRegistry()
	a.registerMetrics()
	return a, nil
}

// registerMetrics builds the fixed metric catalog. Peak angle and range of
// motion get one entry per joint coordinate; the trunk and depth metrics are
// marker-based and registered once.
func (a *Analysis) registerMetrics() {
	r := a.registry
	r.Register("squat_depth", a.squatDepth)
	r.Register("trunk_lean_relative_to_ground", a.trunkLean)
	r.Register("trunk_flexion_relative_to_ground", a.trunkFlexion)
	for _, coord := range a.trial.CoordinateNames() {
		r.Register("peak_"+coord, a.peakAngleFunc(coord, PeakMax))
		r.Register("rom_"+coord, a.romFunc(coord))
	}
}

// Events returns the detected repetition events.
func (a *Analysis) Events() *RepetitionEvents { return a.events }

// NumRepetitions returns the number of analyzed repetitions.
func (a *Analysis) NumRepetitions() int { return a.events.NumRepetitions() }

// Trial returns the (possibly trimmed) provider the analysis reads from.
func (a *Analysis) Trial() kinematics.Provider { return a.trial }

// MetricNames returns the available metric names.
func (a *Analysis) MetricNames() []string { return a.registry.Names() }

// Series computes one metric's per-repetition series.
func (a *Analysis) Series(name string) (analysis.Series, error) { return a.registry.Series(name) }

// Scalar computes one metric reduced to mean/std/unit.
func (a *Analysis) Scalar(name string) (analysis.Scalar, error) { return a.registry.Scalar(name) }

// Scalars computes the named metrics, or all of them for an empty list.
func (a *Analysis) Scalars(names []string) (*analysis.ScalarSet, error) {
	return a.registry.Scalars(names)
}

// PeakAngle computes the per-repetition peak of a coordinate, maximum or
// minimum.
func (a *Analysis) PeakAngle(coordinate string, peakType PeakType) (analysis.Series, error) {
	if peakType != PeakMax && peakType != PeakMin {
		return analysis.Series{}, fmt.Errorf("peak type must be %q or %q, got %q", PeakMax, PeakMin, peakType)
	}
	vals, err := a.trial.Coordinate(coordinate)
	if err != nil {
		return analysis.Series{}, err
	}
	out := make([]float64, a.NumRepetitions())
	for i, idx := range a.events.Idx {
		peak := vals[idx[0]]
		for f := idx[0] + 1; f <= idx[1]; f++ {
			if peakType == PeakMax {
				peak = math.Max(peak, vals[f])
			} else {
				peak = math.Min(peak, vals[f])
			}
		}
		out[i] = peak
	}
	return analysis.Series{Values: out, Unit: analysis.CoordinateUnit(coordinate)}, nil
}

// RatioPeakAngle relates two coordinates' per-repetition peaks as a
// percentage. The coordinates must share a unit.
func (a *Analysis) RatioPeakAngle(coordinateA, coordinateB string, peakType PeakType) (analysis.Series, error) {
	pa, err := a.PeakAngle(coordinateA, peakType)
	if err != nil {
		return analysis.Series{}, err
	}
	pb, err := a.PeakAngle(coordinateB, peakType)
	if err != nil {
		return analysis.Series{}, err
	}
	if !units.Compatible(pa.Unit, pb.Unit) {
		return analysis.Series{}, &analysis.UnitMismatchError{UnitA: pa.Unit, UnitB: pb.Unit}
	}

	out := make([]float64, len(pa.Values))
	for i := range out {
		out[i] = pa.Values[i] / pb.Values[i] * 100
	}
	return analysis.Series{Values: out, Unit: units.Percent}, nil
}

// RangeOfMotion computes the per-repetition peak-to-peak range of a
// coordinate.
func (a *Analysis) RangeOfMotion(coordinate string) (analysis.Series, error) {
	vals, err := a.trial.Coordinate(coordinate)
	if err != nil {
		return analysis.Series{}, err
	}
	out := make([]float64, a.NumRepetitions())
	for i, idx := range a.events.Idx {
		lo, hi := math.Inf(1), math.Inf(-1)
		for f := idx[0]; f <= idx[1]; f++ {
			lo = math.Min(lo, vals[f])
			hi = math.Max(hi, vals[f])
		}
		out[i] = hi - lo
	}
	return analysis.Series{Values: out, Unit: analysis.CoordinateUnit(coordinate)}, nil
}

func (a *Analysis) peakAngleFunc(coordinate string, peakType PeakType) analysis.MetricFunc {
	return func() (analysis.Series, error) { return a.PeakAngle(coordinate, peakType) }
}

func (a *Analysis) romFunc(coordinate string) analysis.MetricFunc {
	return func() (analysis.Series, error) { return a.RangeOfMotion(coordinate) }
}
