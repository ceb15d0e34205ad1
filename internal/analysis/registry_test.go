package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaitlab/stride.report/internal/kinematics"
	"github.com/gaitlab/stride.report/internal/units"
)

func constMetric(v float64, unit string) MetricFunc {
	return func() (Series, error) {
		return Series{Values: []float64{v, v}, Unit: unit}, nil
	}
}

func TestRegistryOrderAndReplace(t *testing.T) {
	r := NewRegistry()
	r.Register("alpha", constMetric(1, units.Meters))
	r.Register("beta", constMetric(2, units.Seconds))
	r.Register("alpha", constMetric(9, units.Meters))

	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	sc, err := r.Scalar("alpha")
	require.NoError(t, err)
	assert.InDelta(t, 9, sc.Value, 1e-12)
}

func TestRegistryUnknownMetric(t *testing.T) {
	r := NewRegistry()
	r.Register("alpha", constMetric(1, units.Meters))

	_, err := r.Series("gamma")
	var unknown *UnknownMetricError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "gamma", unknown.Metric)
	assert.Contains(t, unknown.Error(), "alpha")

	// An unknown name fails the whole multi-metric call.
	_, err = r.Scalars([]string{"alpha", "gamma"})
	assert.ErrorAs(t, err, &unknown)
}

func TestRegistryScalarsSkipsMissingInputs(t *testing.T) {
	r := NewRegistry()
	r.Register("good", constMetric(5, units.Meters))
	r.Register("needs_marker", func() (Series, error) {
		return Series{}, &kinematics.MissingMarkerError{Marker: kinematics.MarkerRToe}
	})
	r.Register("needs_coord", func() (Series, error) {
		return Series{}, &kinematics.NoSuchCoordinateError{Coordinate: "knee_angle_r"}
	})

	set, err := r.Scalars(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, set.Names())
}

func TestRegistryScalarsPropagatesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	r.Register("bad", func() (Series, error) { return Series{}, boom })

	_, err := r.Scalars(nil)
	assert.ErrorIs(t, err, boom)
}

func TestRegistryScalarsDefaultsToAll(t *testing.T) {
	r := NewRegistry()
	r.Register("a", constMetric(1, units.Meters))
	r.Register("b", constMetric(2, units.Meters))

	set, err := r.Scalars(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Names())
}
