package satgrid

import (
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestIndices(t *testing.T) {
	for _, tc := range []struct {
		origin   [2]int
		shape    [2]int
		expected [4]int
	}{
		{origin: [2]int{0, 0}, shape: [2]int{16, 32}, expected: [4]int{0, 15, 0, 31}},
		{origin: [2]int{2, 3}, shape: [2]int{3, 4}, expected: [4]int{2, 4, 3, 6}},
	} {
		rowMin, rowMax, colMin, colMax := Indices(tc.origin, tc.shape)
		assert.Equal(t, tc.expected, [4]int{rowMin, rowMax, colMin, colMax})
	}
}

func TestSubdivide(t *testing.T) {
	quadrants := Subdivide([2]int{0, 0}, [2]int{16, 32})
	assert.Equal(t, map[string][4][2]int{
		"UL": {{0, 0}, {0, 16}, {8, 0}, {8, 16}},
		"UR": {{0, 16}, {0, 31}, {8, 16}, {8, 31}},
		"LL": {{8, 0}, {8, 16}, {15, 0}, {15, 16}},
		"LR": {{8, 16}, {8, 31}, {15, 16}, {15, 31}},
	}, quadrants)
}

func TestBilinear_constant(t *testing.T) {
	x := math.Pi
	block := Bilinear([2]int{5, 5}, x, x, x, x)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			assert.Equal(t, x, block[i][j])
		}
	}
}

func TestBilinear_corners(t *testing.T) {
	for _, tc := range []struct {
		name           string
		ul, ur, lr, ll float64
		centre         float64
	}{
		{name: "ramp", ul: 0, ur: 1, lr: 1, ll: 0, centre: 0.5},
		{name: "saddle", ul: 0, ur: 1, lr: 2, ll: 1, centre: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			block := Bilinear([2]int{5, 5}, tc.ul, tc.ur, tc.lr, tc.ll)
			assert.Equal(t, tc.ul, block[0][0])
			assert.Equal(t, tc.ur, block[0][4])
			assert.Equal(t, tc.lr, block[4][4])
			assert.Equal(t, tc.ll, block[4][0])
			assert.Equal(t, tc.centre, block[2][2])
		})
	}
}

func TestInterpolateBlock_product(t *testing.T) {
	f := EvaluatorFunc(func(row, col int) (float64, error) {
		return float64(row * col), nil
	})

	block, err := InterpolateBlock([2]int{0, 0}, [2]int{5, 5}, f, DefaultInterpolationDepth)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, block[0][0])
	assert.Equal(t, 0.0, block[0][4])
	assert.Equal(t, 0.0, block[4][0])
	assert.Equal(t, 4.0, block[2][2])
	assert.Equal(t, 16.0, block[4][4])

	block, err = InterpolateBlock([2]int{0, 0}, [2]int{5, 11}, f, DefaultInterpolationDepth)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, block[0][0])
	assert.Equal(t, 0.0, block[0][10])
	assert.Equal(t, 0.0, block[4][0])
	assert.Equal(t, 40.0, block[4][10])
	assert.Equal(t, 30.0, block[3][10])
	assert.Equal(t, 36.0, block[4][9])
}

func TestInterpolateBlock_planar(t *testing.T) {
	f := EvaluatorFunc(func(row, col int) (float64, error) {
		return float64(row + col), nil
	})
	shape := [2]int{3, 5}

	direct := Bilinear(shape, 0, 4, 6, 2)
	block, err := InterpolateBlock([2]int{0, 0}, shape, f, DefaultInterpolationDepth)
	assert.NoError(t, err)
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			assert.True(t, math.Abs(block[i][j]-direct[i][j]) < 1e-6)
		}
	}
}

func TestInterpolateBlock_errorMonotonicity(t *testing.T) {
	f := EvaluatorFunc(func(row, col int) (float64, error) {
		return float64(row) * float64(row) * math.Sqrt(float64(col)), nil
	})
	shape := [2]int{16, 32}

	maxError := func(block [][]float64) float64 {
		worst := 0.0
		for i := 0; i < shape[0]; i++ {
			for j := 0; j < shape[1]; j++ {
				exact, _ := f(i, j)
				worst = math.Max(worst, math.Abs(block[i][j]-exact))
			}
		}
		return worst
	}

	previous := math.Inf(1)
	for depth := 0; depth < 5; depth++ {
		block, err := InterpolateBlock([2]int{0, 0}, shape, f, depth)
		assert.NoError(t, err)
		worst := maxError(block)
		assert.True(t, worst <= previous)
		previous = worst
	}
}

func TestInterpolateGrid_idempotent(t *testing.T) {
	f := EvaluatorFunc(func(row, col int) (float64, error) {
		return math.Sin(float64(row)/17) * math.Cos(float64(col)/31), nil
	})
	shape := [2]int{20, 40}

	first := NewGrid(shape[0], shape[1])
	assert.NoError(t, InterpolateGrid(first, f, 3, [2]int{0, 0}, shape))
	second := NewGrid(shape[0], shape[1])
	assert.NoError(t, InterpolateGrid(second, f, 3, [2]int{0, 0}, shape))
	assert.Equal(t, first, second)
}

func TestInterpolateBlock_evaluatorError(t *testing.T) {
	errBoom := errors.New("boom")
	f := EvaluatorFunc(func(row, col int) (float64, error) {
		if row > 4 {
			return 0, errBoom
		}
		return 0, nil
	})

	_, err := InterpolateBlock([2]int{0, 0}, [2]int{16, 16}, f, 2)
	assert.True(t, errors.Is(err, errBoom))
}
