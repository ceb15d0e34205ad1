package kinematics

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
)

// TimeBaseTolerance is the maximum disagreement, in seconds, allowed between
// the marker and coordinate time vectors of one trial.
const TimeBaseTolerance = 0.001

// Provider supplies trial kinematics to the analyses: a shared time vector,
// marker trajectories, joint-coordinate values, and a whole-body
// center-of-mass estimate. Returned slices are owned by the provider and must
// not be mutated; analyses copy before rotating or trimming.
type Provider interface {
	// Time returns the shared time vector in seconds.
	Time() []float64

	// SampleInterval returns the frame interval in seconds.
	SampleInterval() float64

	// NumFrames returns the number of frames in the trial.
	NumFrames() int

	// HasMarker reports whether the named marker was captured.
	HasMarker(name string) bool

	// Marker returns the trajectory for the named marker, or a
	// *MissingMarkerError.
	Marker(name string) ([]Vec3, error)

	// CoordinateNames returns the joint-coordinate column names in file
	// order, excluding the time column.
	CoordinateNames() []string

	// Coordinate returns the value series for the named joint coordinate, or
	// a *NoSuchCoordinateError.
	Coordinate(name string) ([]float64, error)

	// CenterOfMass returns the whole-body center-of-mass trajectory.
	CenterOfMass() []Vec3

	// Trim returns a truncated copy of the provider with the given durations,
	// in seconds, removed from the start and end of the trial.
	Trim(startSeconds, endSeconds float64) (Provider, error)
}

// Trial holds the loaded kinematics of one motion-capture trial. It is
// constructed once, read-only afterwards except for the internally memoized
// center of mass, and is safe for single-threaded use only.
type Trial struct {
	time       []float64
	markers    map[string][]Vec3
	coords     map[string][]float64
	coordNames []string

	// com is computed on first use and cached.
	com []Vec3
}

// NewTrial assembles a trial from already-loaded arrays. The marker and
// coordinate data must share a time base within TimeBaseTolerance; every
// trajectory must span every frame.
func NewTrial(markerTime []float64, markers map[string][]Vec3, coordTime []float64, coords map[string][]float64, coordNames []string) (*Trial, error) {
	if len(markerTime) < 2 {
		return nil, fmt.Errorf("trial needs at least 2 frames, got %d", len(markerTime))
	}
	if len(coordTime) != len(markerTime) {
		return nil, &TimeBaseError{MaxDelta: math.Inf(1)}
	}
	maxDelta := 0.0
	for i := range markerTime {
		if d := math.Abs(markerTime[i] - coordTime[i]); d > maxDelta {
			maxDelta = d
		}
	}
	if maxDelta > TimeBaseTolerance {
		return nil, &TimeBaseError{MaxDelta: maxDelta}
	}

	for name, traj := range markers {
		if len(traj) != len(markerTime) {
			return nil, fmt.Errorf("marker %q has %d frames, want %d", name, len(traj), len(markerTime))
		}
	}
	for name, vals := range coords {
		if len(vals) != len(markerTime) {
			return nil, fmt.Errorf("coordinate %q has %d frames, want %d", name, len(vals), len(markerTime))
		}
	}
	if coordNames == nil {
		coordNames = make([]string, 0, len(coords))
		for name := range coords {
			coordNames = append(coordNames, name)
		}
		sort.Strings(coordNames)
	}

	return &Trial{
		time:       markerTime,
		markers:    markers,
		coords:     coords,
		coordNames: coordNames,
	}, nil
}

// LoadTrial reads a trial's marker (.trc) and coordinate (.mot) files from a
// session directory laid out the way the download utilities produce it. A
// positive lowpass cutoff smooths both marker and coordinate data; pass -1 to
// skip filtering.
func LoadTrial(sessionDir, trialName string, lowpassCutoffHz float64) (*Trial, error) {
	trcPath := filepath.Join(sessionDir, "MarkerData", trialName+".trc")
	motPath := filepath.Join(sessionDir, "OpenSimData", "Kinematics", trialName+".mot")

	markerTime, markers, err := ReadTRC(trcPath)
	if err != nil {
		return nil, fmt.Errorf("load markers: %w", err)
	}
	coordTime, coords, coordNames, err := ReadMOT(motPath)
	if err != nil {
		return nil, fmt.Errorf("load coordinates: %w", err)
	}

	trial, err := NewTrial(markerTime, markers, coordTime, coords, coordNames)
	if err != nil {
		return nil, err
	}
	if lowpassCutoffHz > 0 {
		if err := trial.lowpassFilter(lowpassCutoffHz); err != nil {
			return nil, err
		}
	}
	return trial, nil
}

// Time returns the shared time vector in seconds.
func (t *Trial) Time() []float64 { return t.time }

// NumFrames returns the number of frames in the trial.
func (t *Trial) NumFrames() int { return len(t.time) }

// SampleInterval returns the frame interval in seconds, assuming uniform
// sampling.
func (t *Trial) SampleInterval() float64 {
	return (t.time[len(t.time)-1] - t.time[0]) / float64(len(t.time)-1)
}

// HasMarker reports whether the named marker was captured.
func (t *Trial) HasMarker(name string) bool {
	_, ok := t.markers[name]
	return ok
}

// Marker returns the trajectory for the named marker.
func (t *Trial) Marker(name string) ([]Vec3, error) {
	traj, ok := t.markers[name]
	if !ok {
		return nil, &MissingMarkerError{Marker: name}
	}
	return traj, nil
}

// MarkerNames returns the captured marker names in sorted order.
func (t *Trial) MarkerNames() []string {
	names := make([]string, 0, len(t.markers))
	for name := range t.markers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoordinateNames returns the joint-coordinate column names in file order.
func (t *Trial) CoordinateNames() []string { return t.coordNames }

// Coordinate returns the value series for the named joint coordinate.
func (t *Trial) Coordinate(name string) ([]float64, error) {
	vals, ok := t.coords[name]
	if !ok {
		return nil, &NoSuchCoordinateError{Coordinate: name, Known: t.coordNames}
	}
	return vals, nil
}

// lowpassFilter smooths all marker and coordinate series in place with a
// zero-phase Butterworth lowpass.
func (t *Trial) lowpassFilter(cutoffHz float64) error {
	filt, err := newTrialLowpass(cutoffHz, 1/t.SampleInterval())
	if err != nil {
		return err
	}
	for name, traj := range t.markers {
		t.markers[name] = filt.filterVec3(traj)
	}
	for name, vals := range t.coords {
		t.coords[name] = filt.filterScalar(vals)
	}
	// Any previously memoized center of mass is stale.
	t.com = nil
	return nil
}
