package satgrid

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func openTestViewAngleRaster(t *testing.T) *ViewAngleRaster {
	t.Helper()
	raster, err := NewViewAngleRaster(os.DirFS("testdata"), "satellite_view.tif")
	if errors.Is(err, fs.ErrNotExist) {
		t.Skip(err)
	}
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, raster.Close())
	})
	return raster
}

func TestNewViewAngleRaster(t *testing.T) {
	raster := openTestViewAngleRaster(t)

	rows, cols := raster.Shape()
	assert.True(t, rows > 0)
	assert.True(t, cols > 0)

	geobox, err := raster.GeoBox()
	assert.NoError(t, err)
	geoboxRows, geoboxCols := geobox.Shape()
	assert.Equal(t, rows, geoboxRows)
	assert.Equal(t, cols, geoboxCols)
}

func TestViewAngleRaster_Sample(t *testing.T) {
	raster := openTestViewAngleRaster(t)

	rows, cols := raster.Shape()
	for _, rc := range [][2]int{{0, 0}, {rows - 1, cols - 1}, {rows / 2, cols / 2}} {
		sample, err := raster.Sample(rc[0], rc[1])
		assert.NoError(t, err)
		if !math.IsNaN(sample) {
			assert.True(t, 0 <= sample && sample < 90)
		}
	}

	// Out of bounds samples are NaN, not errors.
	sample, err := raster.Sample(-1, 0)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(sample))
	sample, err = raster.Sample(rows, cols)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(sample))
}

func TestViewAngleRaster_Row(t *testing.T) {
	raster := openTestViewAngleRaster(t)

	rows, cols := raster.Shape()
	for _, row := range []int{0, rows / 2, rows - 1} {
		samples, err := raster.Row(row)
		assert.NoError(t, err)
		assert.Equal(t, cols, len(samples))
		for col, sample := range samples {
			individual, err := raster.Sample(row, col)
			assert.NoError(t, err)
			if math.IsNaN(sample) {
				assert.True(t, math.IsNaN(individual))
			} else {
				assert.Equal(t, individual, sample)
			}
		}
	}

	_, err := raster.Row(rows)
	assert.Error(t, err)
}

func TestViewAngleRaster_SwathEdges(t *testing.T) {
	raster := openTestViewAngleRaster(t)

	grid, err := raster.Grid()
	assert.NoError(t, err)

	rows, _ := raster.Shape()
	startCol, endCol := SwathEdges(grid, DefaultMaxViewAngle)
	assert.Equal(t, rows, len(startCol))
	assert.Equal(t, rows, len(endCol))
	for i := 0; i < rows; i++ {
		if startCol[i] >= 0 {
			assert.True(t, startCol[i] <= endCol[i])
		}
	}
}
