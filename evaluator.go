package satgrid

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluatorCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satgrid_evaluator_cache_hits_total",
		Help: "The total number of hits on the caching evaluator",
	})
	evaluatorCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satgrid_evaluator_cache_misses_total",
		Help: "The total number of misses on the caching evaluator",
	})
)

var errVertexGridMismatch = errors.New("vertex grid mismatch")

// An Evaluator produces the exact value of a field at a raster location.
// Implementations must be pure: BLRB interpolation may evaluate the same
// (row, col) more than once across sibling quadrants and requires identical
// results each time.
type Evaluator interface {
	Evaluate(row, col int) (float64, error)
}

// An EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(row, col int) (float64, error)

func (f EvaluatorFunc) Evaluate(row, col int) (float64, error) {
	return f(row, col)
}

// A LongitudeEvaluator evaluates the longitude of a pixel centre by geodetic
// projection.
type LongitudeEvaluator struct {
	geobox *GriddedGeoBox
}

// NewLongitudeEvaluator returns a LongitudeEvaluator over geobox.
func NewLongitudeEvaluator(geobox *GriddedGeoBox) *LongitudeEvaluator {
	return &LongitudeEvaluator{geobox: geobox}
}

func (e *LongitudeEvaluator) Evaluate(row, col int) (float64, error) {
	lon, _, err := e.geobox.LonLat(row, col)
	return lon, err
}

// A LatitudeEvaluator evaluates the latitude of a pixel centre by geodetic
// projection.
type LatitudeEvaluator struct {
	geobox *GriddedGeoBox
}

// NewLatitudeEvaluator returns a LatitudeEvaluator over geobox.
func NewLatitudeEvaluator(geobox *GriddedGeoBox) *LatitudeEvaluator {
	return &LatitudeEvaluator{geobox: geobox}
}

func (e *LatitudeEvaluator) Evaluate(row, col int) (float64, error) {
	_, lat, err := e.geobox.LonLat(row, col)
	return lat, err
}

// A VertexFieldEvaluator evaluates a field known only at the sparse
// coordinator vertices, interpolating within the vertex cells. The vertex
// grid is warped: each vertex row carries its own column positions, centred
// on the satellite track. Evaluations outside the vertex hull clamp to the
// nearest cell.
type VertexFieldEvaluator struct {
	rowIndex []int       // raster row of each vertex row
	colIndex [][]int     // raster column of each vertex, per vertex row
	values   [][]float64 // field value at each vertex, per vertex row
}

// NewVertexFieldEvaluator returns a VertexFieldEvaluator over a coordinator
// table of vertexRows x vertexCols vertices, in row-major order, and the
// field values evaluated at those vertices by the external model.
func NewVertexFieldEvaluator(coordinator []Coordinator, vertexRows, vertexCols int, values []float64) (*VertexFieldEvaluator, error) {
	if vertexRows < 2 || vertexCols < 2 {
		return nil, fmt.Errorf("%w: need at least 2x2 vertices, got %dx%d",
			errVertexGridMismatch, vertexRows, vertexCols)
	}
	if len(coordinator) != vertexRows*vertexCols || len(values) != len(coordinator) {
		return nil, fmt.Errorf("%w: %d vertices, %d values, expected %dx%d",
			errVertexGridMismatch, len(coordinator), len(values), vertexRows, vertexCols)
	}
	e := &VertexFieldEvaluator{
		rowIndex: make([]int, vertexRows),
		colIndex: make([][]int, vertexRows),
		values:   make([][]float64, vertexRows),
	}
	for ig := 0; ig < vertexRows; ig++ {
		e.rowIndex[ig] = coordinator[ig*vertexCols].RowIndex
		e.colIndex[ig] = make([]int, vertexCols)
		e.values[ig] = make([]float64, vertexCols)
		for jg := 0; jg < vertexCols; jg++ {
			v := coordinator[ig*vertexCols+jg]
			if v.RowIndex != e.rowIndex[ig] {
				return nil, fmt.Errorf("%w: vertex row %d is not constant", errVertexGridMismatch, ig)
			}
			e.colIndex[ig][jg] = v.ColIndex
			e.values[ig][jg] = values[ig*vertexCols+jg]
		}
	}
	return e, nil
}

func (e *VertexFieldEvaluator) Evaluate(row, col int) (float64, error) {
	ig := bandIndex(e.rowIndex, row)
	r0, r1 := e.rowIndex[ig], e.rowIndex[ig+1]
	fy := 0.0
	if r1 > r0 {
		fy = clamp01(float64(row-r0) / float64(r1-r0))
	}
	top := interpolateRow(e.colIndex[ig], e.values[ig], col)
	bottom := interpolateRow(e.colIndex[ig+1], e.values[ig+1], col)
	return (1-fy)*top + fy*bottom, nil
}

// bandIndex returns i such that edges[i] <= v < edges[i+1], clamped to the
// first and last band.
func bandIndex(edges []int, v int) int {
	for i := 1; i < len(edges)-1; i++ {
		if v < edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

// interpolateRow linearly interpolates values along one vertex row at column
// col.
func interpolateRow(cols []int, values []float64, col int) float64 {
	jg := bandIndex(cols, col)
	c0, c1 := cols[jg], cols[jg+1]
	t := 0.0
	if c1 > c0 {
		t = clamp01(float64(col-c0) / float64(c1-c0))
	}
	return (1-t)*values[jg] + t*values[jg+1]
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// A CachingEvaluator memoises another evaluator. BLRB recomputes shared
// block boundary pixels; when the wrapped evaluator is expensive the cache
// makes the redundant evaluations cheap. Errors are not cached.
type CachingEvaluator struct {
	evaluator Evaluator
	cache     *lru.Cache[[2]int, float64]
}

// NewCachingEvaluator returns a CachingEvaluator wrapping evaluator with an
// LRU cache of the given size.
func NewCachingEvaluator(evaluator Evaluator, cacheSize int) (*CachingEvaluator, error) {
	cache, err := lru.New[[2]int, float64](cacheSize)
	if err != nil {
		return nil, err
	}
	return &CachingEvaluator{
		evaluator: evaluator,
		cache:     cache,
	}, nil
}

func (e *CachingEvaluator) Evaluate(row, col int) (float64, error) {
	key := [2]int{row, col}
	if value, ok := e.cache.Get(key); ok {
		evaluatorCacheHits.Inc()
		return value, nil
	}
	evaluatorCacheMisses.Inc()
	value, err := e.evaluator.Evaluate(row, col)
	if err != nil {
		return 0, err
	}
	e.cache.Add(key, value)
	return value, nil
}
