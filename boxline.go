package satgrid

import "math"

// A BoxLine records, for one raster row, the satellite track bisection
// column and the usable swath bounds. A value of -1 marks rows where the
// quantity could not be determined.
type BoxLine struct {
	RowIndex       int
	BisectionIndex int
	NPoints        int
	StartIndex     int
	EndIndex       int
}

// A Centreline records the satellite track position for one raster row,
// with the column averaged when more than one pixel touched the track.
type Centreline struct {
	RowIndex  int
	ColIndex  int
	NPixels   float64
	Latitude  float64
	Longitude float64
}

// FinaliseTrackCentre converts the raw per-row track accumulators (sum of
// qualifying columns, count of qualifying columns) into per-row bisection
// columns. Columns are averaged where more than one pixel qualified, and
// rows with no qualifying pixel inherit the column of the nearest row that
// has one. If no row qualifies anywhere, every bisection is -1 and
// downstream placement falls back to the raster midline.
func FinaliseTrackCentre(colSum, count []float64) []int {
	rows := len(colSum)
	bisection := make([]int, rows)
	for i := range bisection {
		bisection[i] = -1
	}

	for i := 0; i < rows; i++ {
		if count[i] > 1.5 {
			bisection[i] = int(math.Round(colSum[i] / count[i]))
		} else if count[i] > 0.5 {
			bisection[i] = int(math.Round(colSum[i]))
		}
	}

	// Rows the track missed inherit from the nearest row the track actually
	// crossed. A blind rotation would mis-attribute the last row's column to
	// row 0, so the search is explicit, over the pre-inheritance values.
	original := make([]int, rows)
	copy(original, bisection)
	for i := 0; i < rows; i++ {
		if bisection[i] >= 0 {
			continue
		}
		if j := nearestValidRow(original, i); j >= 0 {
			bisection[i] = original[j]
		}
	}

	return bisection
}

// nearestValidRow returns the index of the row closest to i with a
// non-negative bisection, preferring the earlier row on ties, or -1 if no
// row is valid.
func nearestValidRow(bisection []int, i int) int {
	for d := 1; d < len(bisection); d++ {
		if j := i - d; j >= 0 && bisection[j] >= 0 {
			return j
		}
		if j := i + d; j < len(bisection) && bisection[j] >= 0 {
			return j
		}
	}
	return -1
}

// CreateBoxline builds the boxline table: for every row, the bisection
// column from the finalised track centre and the swath start/end columns
// within maxAngle degrees of satellite view.
func CreateBoxline(viewAngle [][]float64, bisection []int, nPoints []int, maxAngle float64) []BoxLine {
	start, end := SwathEdges(viewAngle, maxAngle)
	boxline := make([]BoxLine, len(viewAngle))
	for i := range boxline {
		boxline[i] = BoxLine{
			RowIndex:       i,
			BisectionIndex: bisection[i],
			NPoints:        nPoints[i],
			StartIndex:     start[i],
			EndIndex:       end[i],
		}
	}
	return boxline
}

// CreateCentreline builds the centreline table, projecting each row's track
// column to geographic coordinates. Rows with no track column use the
// raster's horizontal midline.
func CreateCentreline(geobox *GriddedGeoBox, bisection []int, count []float64) ([]Centreline, error) {
	rows, cols := geobox.Shape()
	centreline := make([]Centreline, rows)
	for i := 0; i < rows; i++ {
		col := bisection[i]
		if col < 0 {
			col = cols / 2
		}
		lon, lat, err := geobox.LonLat(i, col)
		if err != nil {
			return nil, err
		}
		centreline[i] = Centreline{
			RowIndex:  i,
			ColIndex:  col,
			NPixels:   count[i],
			Latitude:  lat,
			Longitude: lon,
		}
	}
	return centreline, nil
}
