package satgrid

import (
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestJulianCentury(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, JulianCentury(j2000))

	// One Julian century later.
	later := j2000.Add(36525 * 24 * time.Hour)
	assert.True(t, math.Abs(JulianCentury(later)-1) < 1e-12)
}

func TestSolarPosition(t *testing.T) {
	// Close to the March 2024 equinox, near true solar noon at the prime
	// meridian: the sun is nearly overhead at the equator.
	equinoxNoon := time.Date(2024, 3, 20, 12, 8, 0, 0, time.UTC)
	zenith, azimuth := SolarPosition(equinoxNoon, 0, 0)
	assert.True(t, zenith < 1.0)
	assert.True(t, 0 <= azimuth && azimuth < 360)

	// Midnight at the same location: the sun is below the horizon.
	midnight := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	zenith, _ = SolarPosition(midnight, 0, 0)
	assert.True(t, zenith > 90)

	// Southern hemisphere summer morning: the sun is up, in the eastern
	// half of the sky.
	morning := time.Date(2024, 1, 12, 23, 52, 0, 0, time.UTC) // 10:52 at 150E
	zenith, azimuth = SolarPosition(morning, -34, 150)
	assert.True(t, zenith < 45)
	assert.True(t, 0 < azimuth && azimuth < 180)
}
