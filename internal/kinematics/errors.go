package kinematics

import (
	"fmt"
	"sort"
	"strings"
)

// MissingMarkerError reports that a calculator referenced a marker the trial
// does not carry.
type MissingMarkerError struct {
	Marker string
}

func (e *MissingMarkerError) Error() string {
	return fmt.Sprintf("marker %q not present in trial", e.Marker)
}

// NoSuchCoordinateError reports that a requested joint coordinate column does
// not exist. Known lists the available coordinate names.
type NoSuchCoordinateError struct {
	Coordinate string
	Known      []string
}

func (e *NoSuchCoordinateError) Error() string {
	known := make([]string, len(e.Known))
	copy(known, e.Known)
	sort.Strings(known)
	return fmt.Sprintf("coordinate %q does not exist; available coordinates: %s",
		e.Coordinate, strings.Join(known, ", "))
}

// TimeBaseError reports that the marker and coordinate time vectors disagree
// beyond tolerance. It is raised at construction, before any segmentation.
type TimeBaseError struct {
	MaxDelta float64
}

func (e *TimeBaseError) Error() string {
	return fmt.Sprintf("marker and coordinate time vectors differ by up to %.6fs (tolerance %.3fs)",
		e.MaxDelta, TimeBaseTolerance)
}
