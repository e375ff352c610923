package satgrid

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCreateLonLatGrids(t *testing.T) {
	const rows, cols = 25, 33
	geobox, err := NewGriddedGeoBox(rows, cols, 148.53, -34.46, 0.00025, 0.00025, "EPSG:4326")
	assert.NoError(t, err)

	lon, lat, err := CreateLonLatGrids(geobox, DefaultInterpolationDepth)
	assert.NoError(t, err)
	assert.Equal(t, rows, len(lon))
	assert.Equal(t, rows, len(lat))

	// In a geographic CRS longitude and latitude are linear in pixel indices,
	// so bilinear reconstruction reproduces the exact values.
	for i := 0; i < rows; i++ {
		assert.Equal(t, cols, len(lon[i]))
		assert.Equal(t, cols, len(lat[i]))
		for j := 0; j < cols; j++ {
			expectedLon, expectedLat, err := geobox.LonLat(i, j)
			assert.NoError(t, err)
			assert.True(t, math.Abs(lon[i][j]-expectedLon) < 1e-9)
			assert.True(t, math.Abs(lat[i][j]-expectedLat) < 1e-9)
		}
	}
}

func TestCreateLonLatGrids_minimalDepth(t *testing.T) {
	geobox, err := NewGriddedGeoBox(10, 10, 148.53, -34.46, 0.00025, 0.00025, "EPSG:4326")
	assert.NoError(t, err)

	lon, lat, err := CreateLonLatGrids(geobox, 0)
	assert.NoError(t, err)

	// Depth zero is a single bilinear patch over the whole scene, which is
	// still exact for a linear field.
	expectedLon, expectedLat, err := geobox.LonLat(5, 5)
	assert.NoError(t, err)
	assert.True(t, math.Abs(lon[5][5]-expectedLon) < 1e-9)
	assert.True(t, math.Abs(lat[5][5]-expectedLat) < 1e-9)
}
