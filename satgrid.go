// Package satgrid selects sparse sample locations across a satellite scene
// and reconstructs dense per-pixel grids from exact evaluations at those
// locations, using bilinear recursive bisection (BLRB). It also computes the
// dense satellite/solar angle grids and the satellite-track bookkeeping
// (boxline, centreline, coordinator) that drive the sampling.
package satgrid

const (
	// DefaultMaxViewAngle is the maximum satellite view angle, in degrees,
	// within which a pixel is considered part of the usable swath.
	DefaultMaxViewAngle = 9.0

	// DefaultInterpolationDepth is the default BLRB recursion depth.
	DefaultInterpolationDepth = 7

	// DefaultTrackPoints is the default number of sample points along the
	// satellite track.
	DefaultTrackPoints = 12
)

// NewGrid returns a zeroed rows x cols grid backed by a single allocation.
func NewGrid(rows, cols int) [][]float64 {
	flat := make([]float64, rows*cols)
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = flat[i*cols : (i+1)*cols]
	}
	return grid
}
