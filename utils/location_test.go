package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Nouakchott to Nouadhibou is roughly 360 km as the crow flies.
	d := HaversineDistance(18.0735, -15.9582, 20.9310, -17.0347)
	assert.InDelta(t, 340, d, 30)

	// Same point is zero.
	assert.Zero(t, HaversineDistance(18.0735, -15.9582, 18.0735, -15.9582))

	// Symmetric.
	assert.InDelta(t,
		HaversineDistance(18.0735, -15.9582, 20.9310, -17.0347),
		HaversineDistance(20.9310, -17.0347, 18.0735, -15.9582),
		0.0001)
}

func TestIsLocationValid(t *testing.T) {
	assert.True(t, IsLocationValid(18.0735, -15.9582))
	assert.True(t, IsLocationValid(-90, 180))
	assert.False(t, IsLocationValid(91, 0))
	assert.False(t, IsLocationValid(0, -181))
}

func TestValidateSearchRadius(t *testing.T) {
	assert.True(t, ValidateSearchRadius(10))
	assert.True(t, ValidateSearchRadius(GetMaxSearchRadius()))
	assert.False(t, ValidateSearchRadius(0))
	assert.False(t, ValidateSearchRadius(GetMaxSearchRadius()+1))
}
