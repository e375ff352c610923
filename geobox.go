package satgrid

import (
	"errors"
	"math"

	"github.com/twpayne/go-proj/v10"
)

// geographicCRS is the CRS used for all longitude/latitude outputs.
const geographicCRS = "EPSG:4326"

var errEmptyShape = errors.New("empty shape")

// A GriddedGeoBox describes a raster: its shape, its affine transform (upper
// left origin and pixel size, north-up), and its coordinate reference system.
// It is immutable once created.
type GriddedGeoBox struct {
	rows    int
	cols    int
	originX float64
	originY float64
	pixelX  float64
	pixelY  float64
	crs     string
	pj      *proj.PJ
}

// NewGriddedGeoBox returns a new GriddedGeoBox. originX, originY are the map
// coordinates of the upper left corner of pixel (0, 0); pixelX, pixelY are
// the positive pixel sizes in map units. crs identifies the raster's
// coordinate reference system, for example "EPSG:32655".
func NewGriddedGeoBox(rows, cols int, originX, originY, pixelX, pixelY float64, crs string) (*GriddedGeoBox, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errEmptyShape
	}
	g := &GriddedGeoBox{
		rows:    rows,
		cols:    cols,
		originX: originX,
		originY: originY,
		pixelX:  pixelX,
		pixelY:  pixelY,
		crs:     crs,
	}
	if crs != geographicCRS {
		pj, err := proj.NewCRSToCRS(crs, geographicCRS, nil)
		if err != nil {
			return nil, err
		}
		g.pj = pj
	}
	return g, nil
}

// NewGriddedGeoBoxFromCorners returns a geographic GriddedGeoBox spanning
// from the upper left corner to the lower right corner, both in
// (longitude, latitude), with the given pixel sizes in degrees. The shape is
// rounded up so that the box covers the corner.
func NewGriddedGeoBoxFromCorners(originLon, originLat, cornerLon, cornerLat, pixelX, pixelY float64) (*GriddedGeoBox, error) {
	cols := int(math.Ceil((cornerLon - originLon) / pixelX))
	rows := int(math.Ceil((originLat - cornerLat) / pixelY))
	return NewGriddedGeoBox(rows, cols, originLon, originLat, pixelX, pixelY, geographicCRS)
}

// Shape returns g's shape as (rows, cols).
func (g *GriddedGeoBox) Shape() (int, int) {
	return g.rows, g.cols
}

// XSize returns the number of columns.
func (g *GriddedGeoBox) XSize() int {
	return g.cols
}

// YSize returns the number of rows.
func (g *GriddedGeoBox) YSize() int {
	return g.rows
}

// Origin returns the map coordinates of the upper left corner.
func (g *GriddedGeoBox) Origin() (float64, float64) {
	return g.originX, g.originY
}

// Corner returns the map coordinates of the lower right corner.
func (g *GriddedGeoBox) Corner() (float64, float64) {
	return g.MapXY(float64(g.rows), float64(g.cols))
}

// CRS returns the raster's coordinate reference system.
func (g *GriddedGeoBox) CRS() string {
	return g.crs
}

// MapXY applies the affine transform to fractional pixel coordinates. Whole
// values address pixel corners; add 0.5 to address pixel centres.
func (g *GriddedGeoBox) MapXY(row, col float64) (float64, float64) {
	return g.originX + col*g.pixelX, g.originY - row*g.pixelY
}

// LonLatXY reprojects map coordinates to (longitude, latitude).
func (g *GriddedGeoBox) LonLatXY(x, y float64) (float64, float64, error) {
	if g.pj == nil {
		return x, y, nil
	}
	coord, err := g.pj.Forward(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		return 0, 0, err
	}
	// EPSG:4326 is latitude/longitude axis order.
	return coord.Y(), coord.X(), nil
}

// LonLat returns the (longitude, latitude) of the centre of pixel (row, col).
func (g *GriddedGeoBox) LonLat(row, col int) (float64, float64, error) {
	x, y := g.MapXY(float64(row)+0.5, float64(col)+0.5)
	return g.LonLatXY(x, y)
}

// CentreLonLat returns the (longitude, latitude) of the scene centre.
func (g *GriddedGeoBox) CentreLonLat() (float64, float64, error) {
	x, y := g.MapXY(float64(g.rows)/2, float64(g.cols)/2)
	return g.LonLatXY(x, y)
}

// LatitudeSpan returns the minimum and maximum latitude over the four scene
// corners. It handles northern and southern hemisphere scenes alike.
func (g *GriddedGeoBox) LatitudeSpan() (float64, float64, error) {
	minLat := math.Inf(1)
	maxLat := math.Inf(-1)
	for _, rc := range [4][2]float64{
		{0, 0},
		{0, float64(g.cols)},
		{float64(g.rows), 0},
		{float64(g.rows), float64(g.cols)},
	} {
		x, y := g.MapXY(rc[0], rc[1])
		_, lat, err := g.LonLatXY(x, y)
		if err != nil {
			return 0, 0, err
		}
		minLat = math.Min(minLat, lat)
		maxLat = math.Max(maxLat, lat)
	}
	return minLat, maxLat, nil
}
