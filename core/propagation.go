package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// State is an opaque propagator-ready handle produced by Construct. The
// core never looks inside it; it only hands it back to the capability that
// made it.
type State any

// Sentinel errors surfaced by propagation capabilities.
var (
	ErrConstructRejected = errors.New("element set rejected by propagator")
	ErrPropagationFailed = errors.New("propagation failed")
	ErrUnexpectedState   = errors.New("state was not produced by this propagator")
)

// Propagator is the narrow contract to the external orbital-mechanics
// capability. Keeping it to these four operations isolates the numerical
// integration from the rest of the tracker and lets tests substitute a
// deterministic stub.
type Propagator interface {
	// Construct parses a two-line element set into propagator state.
	Construct(line1, line2 string) (State, error)
	// Propagate advances the state to the given instant, returning an
	// Earth-centred inertial position (km) and velocity (km/s).
	Propagate(st State, at time.Time) (pos, vel Vec3, err error)
	// SiderealTime returns the Greenwich sidereal angle (radians) at the
	// given instant.
	SiderealTime(at time.Time) float64
	// ToGeodetic projects an inertial position onto the rotating Earth
	// ellipsoid: latitude and longitude in degrees, altitude in km.
	ToGeodetic(pos Vec3, gmst float64) (lat, lon, alt float64)
}

// sgp4Propagator backs the Propagator contract with go-satellite.
type sgp4Propagator struct {
	grav satellite.Gravity
}

// NewSGP4Propagator returns a Propagator backed by the go-satellite SGP4
// implementation using the WGS-72 gravity model, the standard model for
// two-line element sets.
func NewSGP4Propagator() Propagator {
	return &sgp4Propagator{grav: satellite.GravityWGS72}
}

// Construct initialises SGP4 state from the element lines. go-satellite
// terminates the process on malformed column data rather than returning an
// error, so both lines are structurally validated first and only reach the
// library when every field parses cleanly; the recover is a backstop for
// anything the validation cannot foresee. A trial propagation at the set's
// own epoch catches element sets the initialiser accepts but cannot
// actually integrate (decayed or inconsistent orbits).
func (p *sgp4Propagator) Construct(line1, line2 string) (st State, err error) {
	rec, err := ParseLines(line1, line2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstructRejected, err)
	}

	defer func() {
		if r := recover(); r != nil {
			st = nil
			err = fmt.Errorf("%w: %v", ErrConstructRejected, r)
		}
	}()

	sat := satellite.TLEToSat(line1, line2, p.grav)
	if _, _, err := p.Propagate(sat, rec.Epoch); err != nil {
		return nil, fmt.Errorf("%w: no solution at epoch", ErrConstructRejected)
	}
	return sat, nil
}

// Propagate advances the state to the instant. go-satellite reports
// numerical divergence through NaN components rather than an error return,
// so both vectors are checked before they leave the adapter.
func (p *sgp4Propagator) Propagate(st State, at time.Time) (Vec3, Vec3, error) {
	sat, ok := st.(satellite.Satellite)
	if !ok {
		return Vec3{}, Vec3{}, ErrUnexpectedState
	}

	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()

	posECI, velECI := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

	pos := Vec3{X: posECI.X, Y: posECI.Y, Z: posECI.Z}
	vel := Vec3{X: velECI.X, Y: velECI.Y, Z: velECI.Z}
	if !pos.IsFinite() {
		return Vec3{}, Vec3{}, fmt.Errorf("%w: position is not finite", ErrPropagationFailed)
	}
	if !vel.IsFinite() {
		return Vec3{}, Vec3{}, fmt.Errorf("%w: velocity is not finite", ErrPropagationFailed)
	}
	return pos, vel, nil
}

func (p *sgp4Propagator) SiderealTime(at time.Time) float64 {
	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()
	return satellite.GSTimeFromDate(year, int(month), day, hour, min, sec)
}

// ToGeodetic projects an inertial position onto the ellipsoid. go-satellite
// terminates the process on a latitude outside [-pi/2, pi/2], so a diverged
// solution comes back as NaN coordinates instead of reaching the degree
// conversion.
func (p *sgp4Propagator) ToGeodetic(pos Vec3, gmst float64) (lat, lon, alt float64) {
	alt, _, llRad := satellite.ECIToLLA(satellite.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, gmst)
	if math.IsNaN(llRad.Latitude) || llRad.Latitude < -math.Pi/2 || llRad.Latitude > math.Pi/2 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	llDeg := satellite.LatLongDeg(llRad)
	return llDeg.Latitude, llDeg.Longitude, alt
}
