package satgrid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/image/tiff/lzw"
)

var (
	viewAngleTileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satgrid_view_angle_tile_cache_hits_total",
		Help: "The total number of hits on the view angle tile cache",
	})
	viewAngleTileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satgrid_view_angle_tile_cache_misses_total",
		Help: "The total number of misses on the view angle tile cache",
	})
)

var errShortRead = errors.New("short read")

// A tileCoord addresses one tile within a tiled GeoTIFF.
type tileCoord struct {
	c int
	r int
}

// A ViewAngleRaster is an open GeoTIFF holding a precomputed per-pixel
// satellite view angle grid, as persisted by an earlier angle computation.
// It lets the boxline derivation run standalone, without recomputing the
// dense grids. Samples are float32 degrees; no-data pixels read as NaN.
type ViewAngleRaster struct {
	file                      *os.File
	imageWidth                int
	imageLength               int
	tileWidth                 int
	tileLength                int
	tilesAcross               int
	tilesDown                 int
	tileOffsets               []uint64
	tileByteCounts            []uint64
	tileSampleCount           int
	tileByteCountUncompressed int
	tileCacheCount            int
	noData                    float32
	hasNoData                 bool
	pixelScaleX               float64
	pixelScaleY               float64
	tiepointX                 float64
	tiepointY                 float64
	geoKeys                   *ParsedGeoKeys
	mutex                     sync.Mutex
	tileCache                 *lru.Cache[tileCoord, []float32]
}

// A ViewAngleRasterOption sets an option on a ViewAngleRaster.
type ViewAngleRasterOption func(*ViewAngleRaster)

// WithTileCacheCount sets the number of decoded tiles kept in memory.
func WithTileCacheCount(tileCacheCount int) ViewAngleRasterOption {
	return func(r *ViewAngleRaster) {
		r.tileCacheCount = tileCacheCount
	}
}

// A viewAngleIFD is a struct into which github.com/google/tiff can unmarshal
// an IFD.
type viewAngleIFD struct {
	ImageWidth          uint16    `tiff:"field,tag=256"`
	ImageLength         uint16    `tiff:"field,tag=257"`
	BitsPerSample       uint16    `tiff:"field,tag=258"`
	Compression         uint16    `tiff:"field,tag=259"`
	SamplesPerPixel     uint16    `tiff:"field,tag=277"`
	PlanarConfiguration uint16    `tiff:"field,tag=284"`
	Predictor           uint16    `tiff:"field,tag=317"`
	TileWidth           uint16    `tiff:"field,tag=322"`
	TileLength          uint16    `tiff:"field,tag=323"`
	TileOffsets         []uint64  `tiff:"field,tag=324"`
	TileByteCounts      []uint64  `tiff:"field,tag=325"`
	SampleFormat        uint16    `tiff:"field,tag=339"`
	ModelPixelScaleTag  []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag    []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag  []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag  []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag   string    `tiff:"field,tag=34737"`
	GDALNoData          string    `tiff:"field,tag=42113"`
}

// NewViewAngleRaster returns a new ViewAngleRaster.
func NewViewAngleRaster(fsys fs.FS, filename string, options ...ViewAngleRasterOption) (*ViewAngleRaster, error) {
	var err error
	ok := false

	r := &ViewAngleRaster{
		tileCacheCount: 64,
	}
	for _, option := range options {
		option(r)
	}

	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	if _, ok := file.(*os.File); !ok {
		return nil, errors.ErrUnsupported
	}
	r.file = file.(*os.File)
	defer func() {
		if !ok {
			_ = r.file.Close()
		}
	}()

	tiffTIFF, err := tiff.Parse(r.file, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}

	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}

	var ifd viewAngleIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if ifd.BitsPerSample != 32 ||
		ifd.Compression != 5 ||
		ifd.SamplesPerPixel != 1 ||
		ifd.PlanarConfiguration != 1 ||
		ifd.Predictor != 1 ||
		ifd.SampleFormat != 3 ||
		len(ifd.ModelPixelScaleTag) != 3 ||
		len(ifd.ModelTiepointTag) != 6 {
		return nil, errors.ErrUnsupported
	}

	r.imageWidth = int(ifd.ImageWidth)
	r.imageLength = int(ifd.ImageLength)
	r.tileWidth = int(ifd.TileWidth)
	r.tileLength = int(ifd.TileLength)
	r.tilesAcross = (r.imageWidth + r.tileWidth - 1) / r.tileWidth
	r.tilesDown = (r.imageLength + r.tileLength - 1) / r.tileLength
	tilesPerImage := r.tilesAcross * r.tilesDown
	if len(ifd.TileByteCounts) != tilesPerImage || len(ifd.TileOffsets) != tilesPerImage {
		return nil, errors.New("incorrect number of tile byte counts or offsets")
	}
	r.tileOffsets = ifd.TileOffsets
	r.tileByteCounts = ifd.TileByteCounts
	r.tileSampleCount = r.tileWidth * r.tileLength
	r.tileByteCountUncompressed = r.tileSampleCount * int(ifd.BitsPerSample) / 8

	if ifd.GDALNoData != "" {
		noData, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(ifd.GDALNoData, "\x00")), 64)
		if err != nil {
			return nil, err
		}
		r.noData = float32(noData)
		r.hasNoData = true
	}

	r.pixelScaleX = ifd.ModelPixelScaleTag[0]
	r.pixelScaleY = ifd.ModelPixelScaleTag[1]
	r.tiepointX = ifd.ModelTiepointTag[3]
	r.tiepointY = ifd.ModelTiepointTag[4]

	if len(ifd.GeoKeyDirectoryTag) != 0 {
		r.geoKeys, err = ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
		if err != nil {
			return nil, err
		}
	}

	r.tileCache, err = lru.New[tileCoord, []float32](r.tileCacheCount)
	if err != nil {
		return nil, err
	}

	ok = true
	return r, nil
}

func (r *ViewAngleRaster) Close() error {
	return r.file.Close()
}

// Shape returns the raster's shape as (rows, cols).
func (r *ViewAngleRaster) Shape() (int, int) {
	return r.imageLength, r.imageWidth
}

// GeoBox returns the raster's GriddedGeoBox, deriving the CRS from the
// raster's geo keys.
func (r *ViewAngleRaster) GeoBox() (*GriddedGeoBox, error) {
	code, ok := r.crsCode()
	if !ok {
		return nil, errors.New("no CRS in geo keys")
	}
	return NewGriddedGeoBox(
		r.imageLength, r.imageWidth,
		r.tiepointX, r.tiepointY,
		r.pixelScaleX, r.pixelScaleY,
		fmt.Sprintf("EPSG:%d", code),
	)
}

// Spheroid returns the ellipsoid recorded in the raster's geo keys, if any.
func (r *ViewAngleRaster) Spheroid() (Spheroid, bool) {
	if r.geoKeys == nil {
		return Spheroid{}, false
	}
	semiMajor, ok := r.geoKeys.DoubleParams[GeoKeyEllipsoidSemiMajorAxis]
	if !ok {
		return Spheroid{}, false
	}
	invFlattening, ok := r.geoKeys.DoubleParams[GeoKeyEllipsoidInvFlattening]
	if !ok {
		return Spheroid{}, false
	}
	return NewSpheroid(semiMajor, invFlattening), true
}

// crsCode returns the EPSG code of the raster's CRS, preferring the
// projected CRS over the geodetic one.
func (r *ViewAngleRaster) crsCode() (int, bool) {
	if r.geoKeys == nil {
		return 0, false
	}
	if code, ok := r.geoKeys.Params[GeoKeyProjectedCRS]; ok && code != 32767 {
		return code, true
	}
	if code, ok := r.geoKeys.Params[GeoKeyGeodeticCRS]; ok && code != 32767 {
		return code, true
	}
	return 0, false
}

// Sample returns the view angle at pixel (row, col), or NaN if the pixel is
// no-data or out of bounds.
func (r *ViewAngleRaster) Sample(row, col int) (float64, error) {
	if row < 0 || r.imageLength <= row || col < 0 || r.imageWidth <= col {
		return math.NaN(), nil
	}
	tileSamples, err := r.getTileSamplesCached(tileCoord{c: col / r.tileWidth, r: row / r.tileLength})
	if err != nil {
		return 0, err
	}
	return r.tileSample(tileSamples, row, col), nil
}

// Row returns one full raster row. It reads each tile intersecting the row
// once, so scanning all rows top to bottom visits each tile tileLength
// times, all but the first served from the cache.
func (r *ViewAngleRaster) Row(row int) ([]float64, error) {
	if row < 0 || r.imageLength <= row {
		return nil, fmt.Errorf("row %d out of range", row)
	}
	samples := make([]float64, r.imageWidth)
	tileRow := row / r.tileLength
	for tileCol := 0; tileCol < r.tilesAcross; tileCol++ {
		tileSamples, err := r.getTileSamplesCached(tileCoord{c: tileCol, r: tileRow})
		if err != nil {
			return nil, err
		}
		for col := tileCol * r.tileWidth; col < min((tileCol+1)*r.tileWidth, r.imageWidth); col++ {
			samples[col] = r.tileSample(tileSamples, row, col)
		}
	}
	return samples, nil
}

// Grid reads the whole raster as a dense grid.
func (r *ViewAngleRaster) Grid() ([][]float64, error) {
	grid := make([][]float64, r.imageLength)
	for row := range grid {
		samples, err := r.Row(row)
		if err != nil {
			return nil, err
		}
		grid[row] = samples
	}
	return grid, nil
}

// getTileSamples reads, decompresses and decodes one tile.
func (r *ViewAngleRaster) getTileSamples(coord tileCoord) ([]float32, error) {
	tileIndex := coord.c + r.tilesAcross*coord.r
	compressedData := make([]byte, r.tileByteCounts[tileIndex])
	switch n, err := r.file.ReadAt(compressedData, int64(r.tileOffsets[tileIndex])); {
	case err != nil:
		return nil, err
	case n != len(compressedData):
		return nil, errShortRead
	}

	tileData := make([]byte, r.tileByteCountUncompressed)
	lzwReader := lzw.NewReader(bytes.NewReader(compressedData), lzw.MSB, 8)
	for bytesRead := 0; bytesRead < r.tileByteCountUncompressed; {
		n, err := lzwReader.Read(tileData[bytesRead:])
		if err != nil {
			return nil, err
		}
		bytesRead += n
	}

	tileSamples := make([]float32, r.tileSampleCount)
	for i := 0; i < r.tileSampleCount; i++ {
		tileSamples[i] = math.Float32frombits(binary.LittleEndian.Uint32(tileData[i*4 : (i+1)*4]))
	}
	return tileSamples, nil
}

// getTileSamplesCached returns one decoded tile, using the cache if
// possible.
func (r *ViewAngleRaster) getTileSamplesCached(coord tileCoord) ([]float32, error) {
	if tileSamples, ok := r.tileCache.Get(coord); ok {
		viewAngleTileCacheHits.Inc()
		return tileSamples, nil
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if tileSamples, ok := r.tileCache.Get(coord); ok {
		viewAngleTileCacheHits.Inc()
		return tileSamples, nil
	}
	viewAngleTileCacheMisses.Inc()

	tileSamples, err := r.getTileSamples(coord)
	if err != nil {
		return nil, err
	}
	r.tileCache.Add(coord, tileSamples)
	return tileSamples, nil
}

// tileSample returns the sample for pixel (row, col) from its tile.
func (r *ViewAngleRaster) tileSample(tileSamples []float32, row, col int) float64 {
	sample := tileSamples[col%r.tileWidth+(row%r.tileLength)*r.tileWidth]
	if r.hasNoData && sample == r.noData {
		return math.NaN()
	}
	return float64(sample)
}
