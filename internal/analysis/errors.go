// Package analysis holds the metric result types, the name-indexed metric
// registry, and the error taxonomy shared by the gait and squat analyses.
package analysis

import (
	"fmt"
	"strings"
)

// SegmentationError reports that no physiologically valid cycle segmentation
// could be produced for a trial. It is fatal to the analysis; the only
// internal recovery attempted beforehand is the prominence back-off.
type SegmentationError struct {
	Reason string
}

func (e *SegmentationError) Error() string {
	return "segmentation failed: " + e.Reason
}

// UnknownMetricError reports a request for a metric name with no registered
// calculator.
type UnknownMetricError struct {
	Metric string
	Known  []string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q; registered metrics: %s",
		e.Metric, strings.Join(e.Known, ", "))
}

// UnitMismatchError reports a composite metric invoked across two underlying
// quantities with incompatible units.
type UnitMismatchError struct {
	UnitA, UnitB string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit mismatch: %q vs %q", e.UnitA, e.UnitB)
}
