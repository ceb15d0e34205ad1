// Package report shapes analysis results for presentation: display labels,
// unit multipliers, rounding, reference thresholds with color bands, and the
// joint-angle curve chart.
package report

import (
	"fmt"
	"math"

	"github.com/gaitlab/stride.report/internal/analysis"
)

// Band describes how a metric value maps onto the colored gauge shown next to
// it. Colors run low to high across MinLimit and MaxLimit.
type Band int

const (
	// BandAbove marks values above the threshold as good; the margin zone
	// is 10% below it.
	BandAbove Band = iota
	// BandBelow marks values below the threshold as good; the margin zone
	// is 10% above it.
	BandBelow
	// BandCentered marks values inside [min, max] as good.
	BandCentered
)

// Colors returns the low-to-high color sequence for the band.
func (b Band) Colors() []string {
	switch b {
	case BandBelow:
		return []string{"green", "yellow", "red"}
	case BandCentered:
		return []string{"red", "green", "red"}
	default:
		return []string{"red", "yellow", "green"}
	}
}

// Metric is one presentation-ready scalar result.
type Metric struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Value    float64  `json:"value"`
	Std      float64  `json:"std,omitempty"`
	Info     string   `json:"info,omitempty"`
	Colors   []string `json:"colors"`
	MinLimit float64  `json:"min_limit"`
	MaxLimit float64  `json:"max_limit"`
}

// Window is the analyzed portion of the trial in frames and seconds, for the
// visualizer to sync against.
type Window struct {
	StartIdx  int     `json:"start_idx"`
	EndIdx    int     `json:"end_idx"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Report is the full presentation document for one analysis.
type Report struct {
	Window  Window   `json:"indices"`
	Metrics []Metric `json:"metrics"`
}

// spec describes how one scalar is presented. Threshold semantics depend on
// the band: for BandAbove/BandBelow only min is used as the threshold value,
// for BandCentered min and max bound the good zone directly.
type spec struct {
	name       string
	label      string
	info       string
	decimal    int
	multiplier float64
	band       Band
	min, max   float64
}

func (s spec) metric(sc analysis.Scalar) Metric {
	value := roundTo(sc.Value*s.multiplier, s.decimal)
	std := roundTo(sc.Std*s.multiplier, s.decimal)

	m := Metric{
		Name:   s.name,
		Label:  s.label,
		Value:  value,
		Std:    std,
		Info:   s.info,
		Colors: s.band.Colors(),
	}
	switch s.band {
	case BandAbove:
		m.MinLimit = roundTo(0.90*s.min, s.decimal)
		m.MaxLimit = roundTo(s.min, s.decimal)
	case BandBelow:
		m.MinLimit = roundTo(s.min, s.decimal)
		m.MaxLimit = roundTo(1.10*s.min, s.decimal)
	case BandCentered:
		m.MinLimit = roundTo(s.min, s.decimal)
		m.MaxLimit = roundTo(s.max, s.decimal)
	}
	return m
}

// build resolves each spec against the computed scalars, skipping metrics the
// analysis did not produce.
func build(scalars *analysis.ScalarSet, specs []spec) []Metric {
	out := make([]Metric, 0, len(specs))
	for _, s := range specs {
		sc, ok := scalars.Get(s.name)
		if !ok {
			continue
		}
		out = append(out, s.metric(sc))
	}
	return out
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// MissingMetricError is returned when a report needs a scalar the analysis
// did not compute.
type MissingMetricError struct {
	Name string
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("report: metric %q not computed", e.Name)
}
