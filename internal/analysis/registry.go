package analysis

import (
	"errors"

	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/monitoring"
)

// MetricFunc computes one metric's per-cycle series.
type MetricFunc func() (Series, error)

// Registry is an explicit mapping from metric name to calculator, built once
// at analysis construction. Name validation happens against this map rather
// than any runtime introspection.
type Registry struct {
	names   []string
	metrics map[string]MetricFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]MetricFunc)}
}

// Register adds a named calculator. Registering the same name twice replaces
// the earlier calculator but keeps its position.
func (r *Registry) Register(name string, fn MetricFunc) {
	if _, ok := r.metrics[name]; !ok {
		r.names = append(r.names, name)
	}
	r.metrics[name] = fn
}

// Names returns the registered metric names in registration order. This is
// the catalog returned when a caller asks for metrics without naming any.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Series computes the unreduced per-cycle series for one metric.
func (r *Registry) Series(name string) (Series, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return Series{}, &UnknownMetricError{Metric: name, Known: r.Names()}
	}
	return fn()
}

// Scalar computes one metric reduced to mean/std/unit.
func (r *Registry) Scalar(name string) (Scalar, error) {
	series, err := r.Series(name)
	if err != nil {
		return Scalar{}, err
	}
	return series.Reduce(), nil
}

// Scalars computes the named metrics into an ordered set. Unknown names fail
// the whole call. A metric that fails because the trial lacks a marker or
// coordinate is skipped with a log line so one bad metric cannot sink a
// multi-metric summary; any other failure propagates.
func (r *Registry) Scalars(names []string) (*ScalarSet, error) {
	if len(names) == 0 {
		names = r.Names()
	}
	out := NewScalarSet()
	for _, name := range names {
		sc, err := r.Scalar(name)
		if err != nil {
			var unknown *UnknownMetricError
			if errors.As(err, &unknown) {
				return nil, err
			}
			var missingMarker *kinematics.MissingMarkerError
			var missingCoord *kinematics.NoSuchCoordinateError
			if errors.As(err, &missingMarker) || errors.As(err, &missingCoord) {
				monitoring.Logf("skipping metric %s: %v", name, err)
				continue
			}
			return nil, err
		}
		out.Add(name, sc)
	}
	return out, nil
}
