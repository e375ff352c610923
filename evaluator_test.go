package satgrid

import (
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestVertexFieldEvaluator_planar(t *testing.T) {
	f := func(row, col int) float64 {
		return float64(row) + 2*float64(col)
	}

	// A 3x3 vertex grid with per-row columns, as CreateVertices produces.
	var coordinator []Coordinator
	var values []float64
	for _, row := range []int{0, 14, 29} {
		for _, col := range []int{0, 20, 39} {
			coordinator = append(coordinator, Coordinator{RowIndex: row, ColIndex: col})
			values = append(values, f(row, col))
		}
	}

	evaluator, err := NewVertexFieldEvaluator(coordinator, 3, 3, values)
	assert.NoError(t, err)

	for _, rc := range [][2]int{{0, 0}, {29, 39}, {14, 20}, {7, 11}, {20, 33}, {1, 38}} {
		actual, err := evaluator.Evaluate(rc[0], rc[1])
		assert.NoError(t, err)
		assert.True(t, math.Abs(actual-f(rc[0], rc[1])) < 1e-9)
	}
}

func TestVertexFieldEvaluator_clampsOutsideHull(t *testing.T) {
	coordinator := []Coordinator{
		{RowIndex: 5, ColIndex: 10}, {RowIndex: 5, ColIndex: 20},
		{RowIndex: 15, ColIndex: 10}, {RowIndex: 15, ColIndex: 20},
	}
	evaluator, err := NewVertexFieldEvaluator(coordinator, 2, 2, []float64{1, 2, 3, 4})
	assert.NoError(t, err)

	above, err := evaluator.Evaluate(0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, above)
	beyond, err := evaluator.Evaluate(99, 99)
	assert.NoError(t, err)
	assert.Equal(t, 4.0, beyond)
}

func TestVertexFieldEvaluator_mismatch(t *testing.T) {
	_, err := NewVertexFieldEvaluator(nil, 3, 3, nil)
	assert.Error(t, err)
	_, err = NewVertexFieldEvaluator(make([]Coordinator, 9), 3, 3, make([]float64, 8))
	assert.Error(t, err)
	_, err = NewVertexFieldEvaluator(make([]Coordinator, 1), 1, 1, make([]float64, 1))
	assert.Error(t, err)
}

type countingEvaluator struct {
	calls int
}

func (e *countingEvaluator) Evaluate(row, col int) (float64, error) {
	e.calls++
	if row < 0 {
		return 0, errors.New("negative row")
	}
	return float64(row*1000 + col), nil
}

func TestCachingEvaluator(t *testing.T) {
	underlying := &countingEvaluator{}
	evaluator, err := NewCachingEvaluator(underlying, 16)
	assert.NoError(t, err)

	first, err := evaluator.Evaluate(3, 7)
	assert.NoError(t, err)
	second, err := evaluator.Evaluate(3, 7)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, underlying.calls)

	_, err = evaluator.Evaluate(4, 7)
	assert.NoError(t, err)
	assert.Equal(t, 2, underlying.calls)

	// Errors are not cached.
	_, err = evaluator.Evaluate(-1, 0)
	assert.Error(t, err)
	_, err = evaluator.Evaluate(-1, 0)
	assert.Error(t, err)
	assert.Equal(t, 4, underlying.calls)
}
