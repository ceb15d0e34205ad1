package sigproc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLowpassRejectsBadParams(t *testing.T) {
	_, err := NewLowpass(0, 100)
	assert.Error(t, err)
	_, err = NewLowpass(6, 0)
	assert.Error(t, err)
	_, err = NewLowpass(60, 100)
	assert.Error(t, err)
}

func TestFiltFiltPreservesConstant(t *testing.T) {
	f, err := NewLowpass(6, 100)
	require.NoError(t, err)

	x := make([]float64, 200)
	for i := range x {
		x[i] = 2.5
	}
	y := f.FiltFilt(x)
	require.Len(t, y, len(x))
	for _, v := range y {
		assert.InDelta(t, 2.5, v, 1e-9)
	}
}

func TestFiltFiltAttenuatesHighFrequency(t *testing.T) {
	f, err := NewLowpass(6, 100)
	require.NoError(t, err)

	// 1 Hz passband component plus 30 Hz noise.
	n := 500
	x := make([]float64, n)
	for i := range x {
		ts := float64(i) / 100
		x[i] = math.Sin(2*math.Pi*1*ts) + 0.5*math.Sin(2*math.Pi*30*ts)
	}
	y := f.FiltFilt(x)

	// Compare against the clean passband component away from the edges.
	var maxErr float64
	for i := 50; i < n-50; i++ {
		ts := float64(i) / 100
		if e := math.Abs(y[i] - math.Sin(2*math.Pi*1*ts)); e > maxErr {
			maxErr = e
		}
	}
	assert.Less(t, maxErr, 0.05)
}

func TestFiltFiltZeroPhase(t *testing.T) {
	f, err := NewLowpass(6, 100)
	require.NoError(t, err)

	// A slow sine should come through with its peaks in place.
	n := 400
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * float64(i) / 200)
	}
	y := f.FiltFilt(x)

	peaksIn := FindPeaks(x, PeakOptions{})
	peaksOut := FindPeaks(y, PeakOptions{})
	require.Equal(t, len(peaksIn), len(peaksOut))
	for i := range peaksIn {
		assert.InDelta(t, peaksIn[i], peaksOut[i], 1)
	}
}

func TestFiltFiltShortInputUnchanged(t *testing.T) {
	f, err := NewLowpass(6, 100)
	require.NoError(t, err)

	x := []float64{1, 2, 3}
	y := f.FiltFilt(x)
	assert.Equal(t, x, y)
}
