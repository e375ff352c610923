package satgrid

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFinaliseTrackCentre(t *testing.T) {
	for _, tc := range []struct {
		name     string
		colSum   []float64
		count    []float64
		expected []int
	}{
		{
			name:     "averaging",
			colSum:   []float64{10, 21, 11},
			count:    []float64{1, 2, 1},
			expected: []int{10, 11, 11},
		},
		{
			name:     "row zero inherits from the next valid row, not the last",
			colSum:   []float64{0, 10, 11, 99},
			count:    []float64{0, 1, 1, 1},
			expected: []int{10, 10, 11, 99},
		},
		{
			name:     "interior gap inherits from the nearest valid row",
			colSum:   []float64{5, 0, 0, 0, 20},
			count:    []float64{1, 0, 0, 0, 1},
			expected: []int{5, 5, 5, 20, 20},
		},
		{
			name:     "no valid row anywhere",
			colSum:   []float64{0, 0, 0},
			count:    []float64{0, 0, 0},
			expected: []int{-1, -1, -1},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FinaliseTrackCentre(tc.colSum, tc.count))
		})
	}
}

func TestCreateBoxline(t *testing.T) {
	viewAngle := [][]float64{
		{12, 8, 3, 0, 3, 8, 12},
		{12, 11, 8, 0, 8, 11, 12},
	}
	bisection := []int{3, 3}
	nPoints := []int{1, 2}

	boxline := CreateBoxline(viewAngle, bisection, nPoints, DefaultMaxViewAngle)
	assert.Equal(t, []BoxLine{
		{RowIndex: 0, BisectionIndex: 3, NPoints: 1, StartIndex: 1, EndIndex: 5},
		{RowIndex: 1, BisectionIndex: 3, NPoints: 2, StartIndex: 2, EndIndex: 4},
	}, boxline)

	for _, bl := range boxline {
		if bl.NPoints > 0 {
			assert.True(t, bl.StartIndex <= bl.BisectionIndex)
			assert.True(t, bl.BisectionIndex <= bl.EndIndex)
		}
	}
}

func TestCreateCentreline(t *testing.T) {
	geobox, err := NewGriddedGeoBox(4, 10, 150, -34, 0.25, 0.25, "EPSG:4326")
	assert.NoError(t, err)

	centreline, err := CreateCentreline(geobox, []int{2, 3, -1, 3}, []float64{1, 2, 0, 1})
	assert.NoError(t, err)
	assert.Equal(t, 4, len(centreline))

	// Row 2 has no track column and falls back to the midline.
	assert.Equal(t, 5, centreline[2].ColIndex)
	assert.Equal(t, 2, centreline[0].ColIndex)
	assert.Equal(t, 1.0, centreline[0].NPixels)

	// Geographic geobox: lon/lat follow directly from the affine transform.
	assert.Equal(t, 150.625, centreline[0].Longitude)
	assert.Equal(t, -34.125, centreline[0].Latitude)
}
