package gait

import (
	"github.com/gaitlab/stride.report/internal/analysis"
)

// NormalizedCoordinates resamples every joint coordinate over each gait
// cycle, heel-strike to heel-strike inclusive, onto the common 0-100% cycle
// axis.
func (a *Analysis) NormalizedCoordinates() (*analysis.NormalizedCurves, error) {
	windows := make([][2]int, a.NumCycles())
	for i, ips := range a.events.IpsiIdx {
		windows[i] = [2]int{ips[0], ips[2]}
	}
	return analysis.NormalizeWindows(a.trial, windows)
}
