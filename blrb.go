package satgrid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blrbCornerEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satgrid_blrb_corner_evaluations_total",
		Help: "The total number of corner evaluations performed by BLRB interpolation",
	})
	blrbTerminalBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satgrid_blrb_terminal_blocks_total",
		Help: "The total number of terminal blocks filled by BLRB interpolation",
	})
)

// blrbMinBlockSize is the block extent below which subdivision stops: a
// quadrant of a smaller block would collapse onto its own boundary.
const blrbMinBlockSize = 3

// Indices returns the inclusive pixel bounds (rowMin, rowMax, colMin,
// colMax) of the block at origin with the given shape.
func Indices(origin, shape [2]int) (int, int, int, int) {
	return origin[0], origin[0] + shape[0] - 1, origin[1], origin[1] + shape[1] - 1
}

// Subdivide splits a block into four quadrants at the block's midpoint,
// using floor division for odd extents. Each quadrant is described by its
// four corner coordinates in (row, col) order: upper left, upper right,
// lower left, lower right. Sibling quadrants share their boundary row and
// column.
func Subdivide(origin, shape [2]int) map[string][4][2]int {
	rMin, rMax, cMin, cMax := Indices(origin, shape)
	rMid := rMin + shape[0]/2
	cMid := cMin + shape[1]/2
	return map[string][4][2]int{
		"UL": {{rMin, cMin}, {rMin, cMid}, {rMid, cMin}, {rMid, cMid}},
		"UR": {{rMin, cMid}, {rMin, cMax}, {rMid, cMid}, {rMid, cMax}},
		"LL": {{rMid, cMin}, {rMid, cMid}, {rMax, cMin}, {rMax, cMid}},
		"LR": {{rMid, cMid}, {rMid, cMax}, {rMax, cMid}, {rMax, cMax}},
	}
}

// Bilinear returns a dense shape[0] x shape[1] block interpolated from its
// four corner values ul, ur, lr, ll by separable linear interpolation. The
// result is exact at all four corners.
func Bilinear(shape [2]int, ul, ur, lr, ll float64) [][]float64 {
	rows, cols := shape[0], shape[1]
	block := NewGrid(rows, cols)
	for i := 0; i < rows; i++ {
		fy := 0.0
		if rows > 1 {
			fy = float64(i) / float64(rows-1)
		}
		left := (1-fy)*ul + fy*ll
		right := (1-fy)*ur + fy*lr
		for j := 0; j < cols; j++ {
			fx := 0.0
			if cols > 1 {
				fx = float64(j) / float64(cols-1)
			}
			block[i][j] = (1-fx)*left + fx*right
		}
	}
	return block
}

// A blrbBlock is a pending block on the subdivision work stack.
type blrbBlock struct {
	origin [2]int
	shape  [2]int
	depth  int
}

// InterpolateBlock reconstructs a dense shape[0] x shape[1] array over the
// block at origin from exact evaluations of evaluator at block corners,
// subdividing to at most the given depth. At depth d the evaluator is called
// O(4^d) times rather than once per pixel. Evaluator errors abort the
// interpolation and are returned unchanged.
func InterpolateBlock(origin, shape [2]int, evaluator Evaluator, depth int) ([][]float64, error) {
	result := NewGrid(shape[0], shape[1])
	if err := interpolateInto(result, origin, origin, shape, evaluator, depth); err != nil {
		return nil, err
	}
	return result, nil
}

// InterpolateGrid fills the region of the pre-allocated dense array result
// selected by origin and shape, addressing result with absolute raster
// coordinates. Two calls with the same evaluator and depth produce identical
// arrays.
func InterpolateGrid(result [][]float64, evaluator Evaluator, depth int, origin, shape [2]int) error {
	return interpolateInto(result, [2]int{0, 0}, origin, shape, evaluator, depth)
}

// interpolateInto is the subdivision driver. It is iterative over an
// explicit work stack so that recursion depth is never a stack concern.
// Shared boundary pixels between sibling quadrants are recomputed
// identically by construction, so last write wins is consistent.
func interpolateInto(result [][]float64, base, origin, shape [2]int, evaluator Evaluator, depth int) error {
	stack := []blrbBlock{{origin: origin, shape: shape, depth: depth}}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if b.depth <= 0 || b.shape[0] < blrbMinBlockSize || b.shape[1] < blrbMinBlockSize {
			if err := fillBlock(result, base, b.origin, b.shape, evaluator); err != nil {
				return err
			}
			continue
		}

		rMin, rMax, cMin, cMax := Indices(b.origin, b.shape)
		rMid := rMin + b.shape[0]/2
		cMid := cMin + b.shape[1]/2
		stack = append(stack,
			blrbBlock{origin: [2]int{rMin, cMin}, shape: [2]int{rMid - rMin + 1, cMid - cMin + 1}, depth: b.depth - 1},
			blrbBlock{origin: [2]int{rMin, cMid}, shape: [2]int{rMid - rMin + 1, cMax - cMid + 1}, depth: b.depth - 1},
			blrbBlock{origin: [2]int{rMid, cMin}, shape: [2]int{rMax - rMid + 1, cMid - cMin + 1}, depth: b.depth - 1},
			blrbBlock{origin: [2]int{rMid, cMid}, shape: [2]int{rMax - rMid + 1, cMax - cMid + 1}, depth: b.depth - 1},
		)
	}
	return nil
}

// fillBlock evaluates the four corners of a terminal block exactly and
// writes the bilinear fill into result.
func fillBlock(result [][]float64, base, origin, shape [2]int, evaluator Evaluator) error {
	rMin, rMax, cMin, cMax := Indices(origin, shape)

	ul, err := evaluator.Evaluate(rMin, cMin)
	if err != nil {
		return err
	}
	ur, err := evaluator.Evaluate(rMin, cMax)
	if err != nil {
		return err
	}
	lr, err := evaluator.Evaluate(rMax, cMax)
	if err != nil {
		return err
	}
	ll, err := evaluator.Evaluate(rMax, cMin)
	if err != nil {
		return err
	}
	blrbCornerEvaluations.Add(4)

	block := Bilinear(shape, ul, ur, lr, ll)
	for i, blockRow := range block {
		copy(result[origin[0]-base[0]+i][origin[1]-base[1]:], blockRow)
	}
	blrbTerminalBlocks.Inc()
	return nil
}
