package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		assert.True(t, IsValid(u), u)
	}
	assert.False(t, IsValid("furlongs"))
}

func TestDisplayMultiplier(t *testing.T) {
	assert.InDelta(t, 100, DisplayMultiplier(Meters, Centimeters), 1e-12)
	assert.InDelta(t, 1, DisplayMultiplier(Meters, Meters), 1e-12)
	assert.InDelta(t, 1, DisplayMultiplier(Degrees, Centimeters), 1e-12)
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible(Degrees, Degrees))
	assert.False(t, Compatible(Degrees, Meters))
}
