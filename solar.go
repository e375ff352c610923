package satgrid

import (
	"math"
	"time"
)

// JulianCentury returns the Julian centuries elapsed since the J2000 epoch
// (2000-01-01 12:00 UT).
func JulianCentury(t time.Time) float64 {
	const j2000 = 2451545.0
	jd := float64(t.UTC().UnixMilli())/86400000.0 + 2440587.5
	return (jd - j2000) / 36525
}

// SolarPosition returns the solar zenith and azimuth angles in degrees at
// time t for a location in degrees. Azimuth is measured clockwise from
// north.
func SolarPosition(t time.Time, lat, lon float64) (float64, float64) {
	jc := JulianCentury(t)

	meanLon := math.Mod(280.46646+jc*(36000.76983+jc*0.0003032), 360)
	meanAnom := 357.52911 + jc*(35999.05029-0.0001537*jc)
	eccentricity := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	anomRad := radians(meanAnom)
	equationOfCentre := math.Sin(anomRad)*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(2*anomRad)*(0.019993-0.000101*jc) +
		math.Sin(3*anomRad)*0.000289
	trueLon := meanLon + equationOfCentre
	apparentLon := trueLon - 0.00569 - 0.00478*math.Sin(radians(125.04-1934.136*jc))

	meanObliquity := 23 + (26+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60)/60
	obliquity := meanObliquity + 0.00256*math.Cos(radians(125.04-1934.136*jc))

	declination := math.Asin(math.Sin(radians(obliquity)) * math.Sin(radians(apparentLon)))

	// Equation of time, in minutes.
	y := math.Tan(radians(obliquity) / 2)
	y *= y
	equationOfTime := 4 * degrees(y*math.Sin(2*radians(meanLon))-
		2*eccentricity*math.Sin(anomRad)+
		4*eccentricity*y*math.Sin(anomRad)*math.Cos(2*radians(meanLon))-
		0.5*y*y*math.Sin(4*radians(meanLon))-
		1.25*eccentricity*eccentricity*math.Sin(2*anomRad))

	utc := t.UTC()
	minutesPastMidnight := float64(utc.Hour())*60 + float64(utc.Minute()) +
		float64(utc.Second())/60 + float64(utc.Nanosecond())/6e10
	trueSolarTime := math.Mod(minutesPastMidnight+equationOfTime+4*lon+1440, 1440)
	hourAngle := trueSolarTime/4 - 180

	latRad := radians(lat)
	cosZenith := math.Sin(latRad)*math.Sin(declination) +
		math.Cos(latRad)*math.Cos(declination)*math.Cos(radians(hourAngle))
	zenith := degrees(math.Acos(math.Max(-1, math.Min(1, cosZenith))))

	sinZenith := math.Sin(radians(zenith))
	var azimuth float64
	if math.Abs(sinZenith) > 1e-12 {
		cosAzimuth := (math.Sin(latRad)*cosZenith - math.Sin(declination)) /
			(math.Cos(latRad) * sinZenith)
		azimuth = degrees(math.Acos(math.Max(-1, math.Min(1, cosAzimuth))))
	}
	if hourAngle > 0 {
		azimuth = math.Mod(azimuth+180, 360)
	} else {
		azimuth = math.Mod(540-azimuth, 360)
	}

	return zenith, azimuth
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
