// Package units provides shared constants and validation for the physical
// units carried by computed metrics. Every scalar leaves the analysis layer
// tagged with one of these so callers never have to infer units.
package units

// Unit constants used by metric results. Unitless marks dimensionless
// quantities such as correlations and ratios of like-united metrics.
const (
	Meters       = "m"
	Centimeters  = "cm"
	MetersPerSec = "m/s"
	Degrees      = "deg"
	Seconds      = "s"
	StepsPerMin  = "steps/min"
	Percent      = "%"
	PercentRL    = "% (R/L)"
	Unitless     = ""
)

// ValidUnits contains all unit values a metric may report.
var ValidUnits = []string{
	Meters, Centimeters, MetersPerSec, Degrees, Seconds,
	StepsPerMin, Percent, PercentRL, Unitless,
}

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, u := range ValidUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// DisplayMultiplier returns the factor applied when presenting a value in the
// target unit. The analysis layer always reports SI base units; the
// presentation layer may rescale (e.g. step width in centimeters).
func DisplayMultiplier(unit, target string) float64 {
	if unit == Meters && target == Centimeters {
		return 100
	}
	return 1
}

// Compatible reports whether two units may be combined in a ratio metric.
func Compatible(a, b string) bool {
	return a == b
}
