package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	// Identical points.
	assert.Zero(t, HaversineMeters(32.0853, 34.7818, 32.0853, 34.7818))

	// Tel Aviv to Jerusalem, roughly 54 km.
	d := HaversineMeters(32.0853, 34.7818, 31.7683, 35.2137)
	assert.InDelta(t, 54000, d, 2000)

	// One degree of latitude is about 111 km.
	d = HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 100)
}

func TestWithinRadius(t *testing.T) {
	siteLat, siteLng := 32.0853, 34.7818
	// ~150 m to the east.
	assert.True(t, WithinRadius(32.0853, 34.7834, siteLat, siteLng, 200))
	assert.False(t, WithinRadius(32.0853, 34.7834, siteLat, siteLng, 100))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "Herzl 1, Tel Aviv", FormatAddress("Herzl 1", "Tel Aviv"))
	assert.Equal(t, "Tel Aviv", FormatAddress("", "Tel Aviv"))
	assert.Equal(t, "Herzl 1", FormatAddress("Herzl 1", ""))
	assert.Equal(t, "", FormatAddress("", ""))
}
