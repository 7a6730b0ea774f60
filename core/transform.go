package core

import (
	"math"
	"time"

	"github.com/signalsfoundry/orbital-tracker/model"
)

// ToGeodetic converts an inertial position to a geodetic sub-point at the
// given instant, using the Greenwich sidereal angle for the Earth-fixed
// rotation. Speed is the Euclidean norm of the inertial velocity; the
// velocity vector itself is not rotated, so this is orbital speed rather
// than ground-track speed.
//
// The second return is false when any component is NaN or outside the valid
// latitude/longitude/altitude domain.
func ToGeodetic(prop Propagator, pos, vel Vec3, at time.Time) (model.GeodeticPosition, bool) {
	gmst := prop.SiderealTime(at)
	lat, lon, alt := prop.ToGeodetic(pos, gmst)
	lon = NormalizeLongitude(lon)
	speed := vel.Norm()

	geo := model.GeodeticPosition{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  alt,
		Speed:     speed,
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(alt) || math.IsNaN(speed) {
		return model.GeodeticPosition{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 || alt < 0 {
		return model.GeodeticPosition{}, false
	}
	return geo, true
}

// NormalizeLongitude wraps a longitude in degrees into [-180, 180].
func NormalizeLongitude(deg float64) float64 {
	wrapped := math.Mod(deg+180, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped - 180
}
