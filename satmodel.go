package satgrid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// earthRotationalVelocity is the Earth rotation rate used by the angle
	// solver, in radians per second.
	earthRotationalVelocity = 0.000072722052

	// earthGravitationalParameter is GM for Earth, in m^3 s^-2.
	earthGravitationalParameter = 398600441800000.0

	secondsPerDay = 24 * 60 * 60
)

var (
	// ErrNoTrackInterval is returned when a location cannot be placed within
	// the satellite track's latitude interval. It is fatal for the
	// acquisition: it signals inconsistent geometry, not missing data.
	ErrNoTrackInterval = errors.New("no interval found in track")

	errBadTLE = errors.New("bad two-line element set")
)

// A Spheroid holds the Earth ellipsoid parameters used by the angle solver.
type Spheroid struct {
	SemiMajorAxis           float64
	InverseFlattening       float64
	EccentricitySquared     float64
	EarthRotationalVelocity float64
}

// NewSpheroid returns a Spheroid with derived eccentricity for the given
// semi-major axis in metres and inverse flattening.
func NewSpheroid(semiMajorAxis, inverseFlattening float64) Spheroid {
	f := 1 / inverseFlattening
	return Spheroid{
		SemiMajorAxis:           semiMajorAxis,
		InverseFlattening:       inverseFlattening,
		EccentricitySquared:     1 - (1-f)*(1-f),
		EarthRotationalVelocity: earthRotationalVelocity,
	}
}

// WGS84 returns the WGS-84 spheroid.
func WGS84() Spheroid {
	return NewSpheroid(6378137.0, 298.257223563)
}

// GeocentricLatitude converts a geodetic latitude to geocentric, both in
// radians.
func (s Spheroid) GeocentricLatitude(lat float64) float64 {
	return math.Atan((1 - s.EccentricitySquared) * math.Tan(lat))
}

// GeocentricRadius returns the distance from the Earth's centre to the
// spheroid surface at a geodetic latitude in radians.
func (s Spheroid) GeocentricRadius(lat float64) float64 {
	a := s.SemiMajorAxis
	b := a * (1 - 1/s.InverseFlattening)
	cosLat, sinLat := math.Cos(lat), math.Sin(lat)
	num := (a*a*cosLat)*(a*a*cosLat) + (b*b*sinLat)*(b*b*sinLat)
	den := (a*cosLat)*(a*cosLat) + (b*sinLat)*(b*sinLat)
	return math.Sqrt(num / den)
}

// ECEF converts geodetic coordinates (radians, metres above the spheroid) to
// Earth-centred Earth-fixed metres.
func (s Spheroid) ECEF(lat, lon, alt float64) (float64, float64, float64) {
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	// Radius of curvature in the prime vertical.
	n := s.SemiMajorAxis / math.Sqrt(1-s.EccentricitySquared*sinLat*sinLat)

	x := (n + alt) * cosLat * cosLon
	y := (n + alt) * cosLat * sinLon
	z := (n*(1-s.EccentricitySquared) + alt) * sinLat
	return x, y, z
}

// OrbitalElements holds the satellite orbital parameters used by the angle
// solver.
type OrbitalElements struct {
	Inclination     float64 // degrees
	SemiMajorRadius float64 // metres
	AngularVelocity float64 // radians per second
}

// OrbitalElementsFromTLE derives orbital elements from a two-line element
// set. Only the inclination and mean motion are used; the semi-major radius
// follows from the mean motion and GM.
func OrbitalElementsFromTLE(line1, line2 string) (OrbitalElements, error) {
	if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") || len(line2) < 63 {
		return OrbitalElements{}, errBadTLE
	}
	inclination, err := strconv.ParseFloat(strings.TrimSpace(line2[8:16]), 64)
	if err != nil {
		return OrbitalElements{}, fmt.Errorf("%w: inclination: %v", errBadTLE, err)
	}
	meanMotion, err := strconv.ParseFloat(strings.TrimSpace(line2[52:63]), 64)
	if err != nil {
		return OrbitalElements{}, fmt.Errorf("%w: mean motion: %v", errBadTLE, err)
	}
	if meanMotion <= 0 {
		return OrbitalElements{}, errBadTLE
	}
	angularVelocity := 2 * math.Pi * meanMotion / secondsPerDay
	return OrbitalElements{
		Inclination:     inclination,
		SemiMajorRadius: math.Cbrt(earthGravitationalParameter / (angularVelocity * angularVelocity)),
		AngularVelocity: angularVelocity,
	}, nil
}

// A TrackPoint is one sample of the satellite ground track: the time offset
// from the scene centre in seconds and the ground point position in degrees.
type TrackPoint struct {
	Time      float64
	Latitude  float64
	Longitude float64
}

// A SatelliteModel is a circular-orbit ground track model anchored at the
// scene centre: at time zero the satellite ground point is the scene centre,
// on a descending pass.
type SatelliteModel struct {
	spheroid    Spheroid
	inclination float64 // radians
	angular     float64 // orbital angular velocity, radians per second
	radius      float64 // orbit radius, metres
	u0          float64 // argument of latitude at the scene centre
	lonNode     float64 // longitude anchor of the ascending node term
}

// NewSatelliteModel returns a SatelliteModel for a scene centred at
// (centreLon, centreLat) degrees.
func NewSatelliteModel(centreLon, centreLat float64, spheroid Spheroid, elements OrbitalElements) (*SatelliteModel, error) {
	inclination := elements.Inclination * math.Pi / 180
	u0, err := argumentOfLatitude(spheroid.GeocentricLatitude(centreLat*math.Pi/180), inclination)
	if err != nil {
		return nil, fmt.Errorf("%w: scene centre latitude %.4f", err, centreLat)
	}
	m := &SatelliteModel{
		spheroid:    spheroid,
		inclination: inclination,
		angular:     elements.AngularVelocity,
		radius:      elements.SemiMajorRadius,
		u0:          u0,
	}
	m.lonNode = centreLon*math.Pi/180 - math.Atan2(math.Sin(u0)*math.Cos(inclination), math.Cos(u0))
	return m, nil
}

// argumentOfLatitude returns the angle from the ascending node, on the
// descending half of the orbit, at which the ground track reaches a
// geocentric latitude, both in radians.
func argumentOfLatitude(geocentricLat, inclination float64) (float64, error) {
	sinU := math.Sin(geocentricLat) / math.Sin(inclination)
	if math.Abs(sinU) > 1 {
		return 0, ErrNoTrackInterval
	}
	return math.Pi - math.Asin(sinU), nil
}

// Altitude returns the satellite altitude above the spheroid at a geodetic
// latitude in radians.
func (m *SatelliteModel) Altitude(lat float64) float64 {
	return m.radius - m.spheroid.GeocentricRadius(lat)
}

// Position returns the ground track longitude in degrees and the time offset
// in seconds at which the satellite crosses a geodetic latitude in degrees.
func (m *SatelliteModel) Position(lat float64) (float64, float64, error) {
	u, err := argumentOfLatitude(m.spheroid.GeocentricLatitude(lat*math.Pi/180), m.inclination)
	if err != nil {
		return 0, 0, err
	}
	t := (u - m.u0) / m.angular
	lon := m.lonNode + math.Atan2(math.Sin(u)*math.Cos(m.inclination), math.Cos(u)) -
		m.spheroid.EarthRotationalVelocity*t
	return normalizeLon(lon * 180 / math.Pi), t, nil
}

// Track samples the ground track at n points spanning the buffered scene
// latitude extent, from north to south, the direction of a descending pass.
func (m *SatelliteModel) Track(minLat, maxLat float64, n int) ([]TrackPoint, error) {
	if n < 2 {
		n = 2
	}
	track := make([]TrackPoint, n)
	for i := 0; i < n; i++ {
		lat := maxLat + float64(i)*(minLat-maxLat)/float64(n-1)
		lon, t, err := m.Position(lat)
		if err != nil {
			return nil, err
		}
		track[i] = TrackPoint{Time: t, Latitude: lat, Longitude: lon}
	}
	return track, nil
}

// normalizeLon wraps a longitude in degrees to [-180, 180).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
