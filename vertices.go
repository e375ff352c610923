package satgrid

import (
	"errors"
	"fmt"
)

var errBadVertexShape = errors.New("bad vertex shape")

// A Coordinator is one sparse sample location: a raster position selected
// for expensive evaluation, with its geographic and map coordinates.
type Coordinator struct {
	RowIndex  int
	ColIndex  int
	Latitude  float64
	Longitude float64
	MapY      float64
	MapX      float64
}

// AsymmetricLinspace returns exactly num integer samples spanning start to
// stop inclusive, with midpoint always sampled exactly: evenly spaced
// samples in [start, midpoint), then the remainder evenly spaced in
// [midpoint, stop]. The split starts at num/2 and shifts samples to the
// other half when a half holds fewer distinct integers than its share, so
// the samples are strictly increasing whenever the whole span holds at
// least num integers. A midpoint outside [start, stop] is clamped to it.
// When num is not cleanly halvable around the midpoint the two halves are
// intentionally asymmetric; sampling the midpoint exactly matters more,
// because the interpolated field's curvature peaks there.
//
//	AsymmetricLinspace(10, 20, 5, 18) == [10 14 18 19 20]
func AsymmetricLinspace(start, stop, num, midpoint int) []int {
	if num <= 0 {
		return nil
	}
	midpoint = min(max(midpoint, start), stop)

	front := min(num/2, midpoint-start)
	back := num - front
	if over := back - (stop - midpoint + 1); over > 0 {
		back -= over
		front += over
	}

	samples := make([]int, 0, num)
	for i := 0; i < front; i++ {
		samples = append(samples, start+int(float64(i)*float64(midpoint-start)/float64(front)))
	}
	if back == 1 {
		return append(samples, midpoint)
	}
	for i := 0; i < back; i++ {
		samples = append(samples, midpoint+int(float64(i)*float64(stop-midpoint)/float64(back-1)))
	}
	return samples
}

// CreateVertices selects the sparse coordinator locations over geobox: a
// vertexRows x vertexCols grid of raster positions, with rows placed around
// the track's representative row and columns placed within each row's swath,
// centred on its bisection column. vertexCols must be odd so that one column
// lands exactly on the bisection line.
//
// The track intersection is classified as full (present at both first and
// last row), partial (appears or disappears mid-scene, in which case the
// boundary row is the representative row so the discontinuity is sampled
// exactly rather than interpolated across), or empty (vertex placement
// degrades to the scene midlines).
func CreateVertices(geobox *GriddedGeoBox, boxline []BoxLine, vertexRows, vertexCols int) ([]Coordinator, error) {
	rows, cols := geobox.Shape()
	if vertexCols%2 == 0 {
		return nil, fmt.Errorf("%w: vertex columns must be odd, got %d", errBadVertexShape, vertexCols)
	}
	if vertexRows > rows || vertexCols > cols {
		return nil, fmt.Errorf("%w: vertices %dx%d exceed acquisition dimensions %dx%d",
			errBadVertexShape, vertexRows, vertexCols, rows, cols)
	}
	if len(boxline) != rows {
		return nil, fmt.Errorf("%w: boxline has %d rows, geobox has %d", errBadVertexShape, len(boxline), rows)
	}

	qualifies := make([]bool, rows)
	for i, bl := range boxline {
		qualifies[i] = bl.NPoints > 0
	}
	first, last := FirstAndLast(qualifies)

	midRow := rows / 2
	if first > 0 {
		midRow = first
	} else if first == 0 && last < rows-1 {
		midRow = last
	}
	// Assumes that a track intersecting two rows intersects all rows in
	// between.

	gridRows := AsymmetricLinspace(0, rows-1, vertexRows, midRow)

	coordinator := make([]Coordinator, 0, vertexRows*vertexCols)
	for _, ir := range gridRows {
		bl := boxline[ir]
		start, end := bl.StartIndex, bl.EndIndex
		// A swath narrower than the vertex grid cannot hold distinct
		// columns; widen to the full row rather than emit duplicates.
		if start < 0 || end < 0 || end-start+1 < vertexCols {
			start, end = 0, cols-1
		}
		midCol := bl.BisectionIndex
		if midCol < 0 {
			midCol = cols / 2
		}
		for _, ic := range AsymmetricLinspace(start, end, vertexCols, midCol) {
			x, y := geobox.MapXY(float64(ir)+0.5, float64(ic)+0.5)
			lon, lat, err := geobox.LonLatXY(x, y)
			if err != nil {
				return nil, err
			}
			coordinator = append(coordinator, Coordinator{
				RowIndex:  ir,
				ColIndex:  ic,
				Latitude:  lat,
				Longitude: lon,
				MapY:      y,
				MapX:      x,
			})
		}
	}
	return coordinator, nil
}
