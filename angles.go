package satgrid

import (
	"fmt"
	"math"
	"time"
)

// An Acquisition carries the scene metadata the angle solver needs: the
// scene centre time and the analytic fallback orbit used when no two-line
// element set is supplied.
type Acquisition struct {
	SceneCentreTime time.Time
	Inclination     float64 // degrees
	SemiMajorRadius float64 // metres
	AngularVelocity float64 // radians per second
}

// OrbitalElementsFromAcquisition returns the analytic fallback orbital
// elements recorded in the acquisition metadata.
func OrbitalElementsFromAcquisition(acq *Acquisition) OrbitalElements {
	return OrbitalElements{
		Inclination:     acq.Inclination,
		SemiMajorRadius: acq.SemiMajorRadius,
		AngularVelocity: acq.AngularVelocity,
	}
}

// AngleGrids holds the dense per-pixel angle grids for an acquisition, all
// in degrees except AcquisitionTime (seconds relative to the scene centre
// time), together with the satellite track tables derived while scanning.
type AngleGrids struct {
	SatelliteView    [][]float64
	SatelliteAzimuth [][]float64
	SolarZenith      [][]float64
	SolarAzimuth     [][]float64
	RelativeAzimuth  [][]float64
	AcquisitionTime  [][]float64
	Boxline          []BoxLine
	Centreline       []Centreline
}

type angleGridConfig struct {
	maxAngle    float64
	trackPoints int
	spheroid    Spheroid
	elements    *OrbitalElements
}

// An AngleGridOption sets an option on ComputeAngleGrids.
type AngleGridOption func(*angleGridConfig)

// WithMaxViewAngle sets the maximum satellite view angle, in degrees, that
// bounds the usable swath.
func WithMaxViewAngle(maxAngle float64) AngleGridOption {
	return func(c *angleGridConfig) {
		c.maxAngle = maxAngle
	}
}

// WithTrackPoints sets the number of sample points along the satellite
// track.
func WithTrackPoints(trackPoints int) AngleGridOption {
	return func(c *angleGridConfig) {
		c.trackPoints = trackPoints
	}
}

// WithSpheroid sets the Earth spheroid.
func WithSpheroid(spheroid Spheroid) AngleGridOption {
	return func(c *angleGridConfig) {
		c.spheroid = spheroid
	}
}

// WithOrbitalElements sets the satellite orbital elements, overriding the
// acquisition's analytic fallback orbit.
func WithOrbitalElements(elements OrbitalElements) AngleGridOption {
	return func(c *angleGridConfig) {
		c.elements = &elements
	}
}

// ComputeAngleGrids computes the dense satellite view, satellite azimuth,
// solar zenith, solar azimuth, relative azimuth and acquisition time grids
// for an acquisition, one row at a time, and derives the boxline and
// centreline tables from the per-row track bookkeeping. The lon and lat
// grids must match geobox's shape; they are typically built with
// CreateLonLatGrids.
//
// These grids are computed densely rather than by BLRB interpolation: the
// spherical geometry solve is cheap enough to run at every pixel, and the
// scan doubles as the track bookkeeping pass.
func ComputeAngleGrids(acq *Acquisition, geobox *GriddedGeoBox, lon, lat [][]float64, options ...AngleGridOption) (*AngleGrids, error) {
	config := angleGridConfig{
		maxAngle:    DefaultMaxViewAngle,
		trackPoints: DefaultTrackPoints,
		spheroid:    WGS84(),
	}
	for _, option := range options {
		option(&config)
	}

	rows, cols := geobox.Shape()
	if len(lon) != rows || len(lat) != rows {
		return nil, fmt.Errorf("lon/lat grids have %d/%d rows, geobox has %d", len(lon), len(lat), rows)
	}

	elements := OrbitalElementsFromAcquisition(acq)
	if config.elements != nil {
		elements = *config.elements
	}

	centreLon, centreLat, err := geobox.CentreLonLat()
	if err != nil {
		return nil, err
	}
	model, err := NewSatelliteModel(centreLon, centreLat, config.spheroid, elements)
	if err != nil {
		return nil, err
	}

	minLat, maxLat, err := geobox.LatitudeSpan()
	if err != nil {
		return nil, err
	}
	// Buffer the extent so edge pixels still fall within a track interval.
	track, err := model.Track(minLat-1, maxLat+1, config.trackPoints)
	if err != nil {
		return nil, err
	}

	grids := &AngleGrids{
		SatelliteView:    NewGrid(rows, cols),
		SatelliteAzimuth: NewGrid(rows, cols),
		SolarZenith:      NewGrid(rows, cols),
		SolarAzimuth:     NewGrid(rows, cols),
		RelativeAzimuth:  NewGrid(rows, cols),
		AcquisitionTime:  NewGrid(rows, cols),
	}

	colSum := make([]float64, rows)
	count := make([]float64, rows)
	trackLon := make([]float64, cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			pixLat, pixLon := lat[i][j], lon[i][j]

			satLon, t, err := interpolateTrack(track, pixLat)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			trackLon[j] = satLon

			view, satAzimuth := lookAngles(config.spheroid, pixLat, pixLon, satLon, model.Altitude(radians(pixLat)))
			solZenith, solAzimuth := SolarPosition(acq.SceneCentreTime.Add(time.Duration(t*float64(time.Second))), pixLat, pixLon)

			grids.SatelliteView[i][j] = view
			grids.SatelliteAzimuth[i][j] = satAzimuth
			grids.SolarZenith[i][j] = solZenith
			grids.SolarAzimuth[i][j] = solAzimuth
			grids.RelativeAzimuth[i][j] = wrap180(satAzimuth - solAzimuth)
			grids.AcquisitionTime[i][j] = t
		}

		// Track bookkeeping: the column(s) where the satellite ground track
		// crosses this row. An exact hit counts one pixel; a crossing
		// between two pixels counts both.
		for j := 0; j < cols; j++ {
			d := wrap180(lon[i][j] - trackLon[j])
			if d == 0 {
				colSum[i] += float64(j)
				count[i]++
				break
			}
			if j+1 < cols {
				dNext := wrap180(lon[i][j+1] - trackLon[j+1])
				if d*dNext < 0 {
					colSum[i] += float64(j) + float64(j+1)
					count[i] += 2
					break
				}
			}
		}
	}

	bisection := FinaliseTrackCentre(colSum, count)
	nPoints := make([]int, rows)
	for i := range nPoints {
		nPoints[i] = int(math.Round(count[i]))
	}
	grids.Boxline = CreateBoxline(grids.SatelliteView, bisection, nPoints, config.maxAngle)
	grids.Centreline, err = CreateCentreline(geobox, bisection, count)
	if err != nil {
		return nil, err
	}

	return grids, nil
}

// interpolateTrack returns the track longitude in degrees and time offset in
// seconds at a latitude, interpolated linearly within the track interval
// containing it. The track is ordered north to south.
func interpolateTrack(track []TrackPoint, lat float64) (float64, float64, error) {
	for k := 0; k+1 < len(track); k++ {
		hi, lo := track[k].Latitude, track[k+1].Latitude
		if lat > hi || lat < lo {
			continue
		}
		f := 0.0
		if hi > lo {
			f = (hi - lat) / (hi - lo)
		}
		lon := track[k].Longitude + f*wrap180(track[k+1].Longitude-track[k].Longitude)
		t := track[k].Time + f*(track[k+1].Time-track[k].Time)
		return normalizeLon(lon), t, nil
	}
	return 0, 0, ErrNoTrackInterval
}

// lookAngles returns the satellite view (zenith) angle and azimuth in
// degrees as seen from a ground pixel, given the satellite ground point
// longitude at the pixel's latitude and the satellite altitude in metres.
// The line of sight is resolved in the pixel's local east-north-up frame.
func lookAngles(spheroid Spheroid, pixLat, pixLon, satLon, altitude float64) (float64, float64) {
	latRad, lonRad := radians(pixLat), radians(pixLon)
	px, py, pz := spheroid.ECEF(latRad, lonRad, 0)
	sx, sy, sz := spheroid.ECEF(latRad, radians(satLon), altitude)
	dx, dy, dz := sx-px, sy-py, sz-pz

	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinLon, cosLon := math.Sin(lonRad), math.Cos(lonRad)
	east := -sinLon*dx + cosLon*dy
	north := -sinLat*cosLon*dx - sinLat*sinLon*dy + cosLat*dz
	up := cosLat*cosLon*dx + cosLat*sinLon*dy + sinLat*dz

	view := 90 - degrees(math.Atan2(up, math.Hypot(east, north)))
	azimuth := math.Mod(degrees(math.Atan2(east, north))+360, 360)
	return view, azimuth
}

// wrap180 wraps a degree difference to (-180, 180].
func wrap180(d float64) float64 {
	d = math.Mod(d, 360)
	switch {
	case d > 180:
		return d - 360
	case d <= -180:
		return d + 360
	default:
		return d
	}
}
