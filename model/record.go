package model

import "time"

// CatalogRecord is one immutable entry of an orbital-catalog snapshot.
// A record carries either decomposed orbital parameters, a pre-encoded
// two-line element set, or both. A record with neither is unresolvable.
type CatalogRecord struct {
	NoradID   int    // catalog-unique, must be positive
	Name      string // display name, e.g. "ISS (ZARYA)"
	IntlDesig string // dash-delimited launch year/number/piece, e.g. "1998-067-A"
	Epoch     time.Time

	// Mean orbital elements at Epoch. Angles in degrees, mean motion
	// in revolutions per day.
	MeanMotion      float64
	Eccentricity    float64
	Inclination     float64
	RightAscension  float64
	ArgOfPericenter float64
	MeanAnomaly     float64

	// Drag terms in catalog units.
	MeanMotionDot  float64 // first derivative of mean motion / 2
	MeanMotionDDot float64 // second derivative of mean motion / 6
	BStar          float64

	// Optional pre-encoded element lines. When both are set the resolver
	// uses them verbatim and the encoder is bypassed.
	LineOne string
	LineTwo string

	Classification byte // TLE classification marker, 0 means 'U'
	EphemerisType  int
	ElementSetNo   int
	RevAtEpoch     int
}

// HasEncodedLines reports whether the record carries a usable pre-encoded
// element set.
func (r *CatalogRecord) HasEncodedLines() bool {
	return r != nil && r.LineOne != "" && r.LineTwo != ""
}

// HasElements reports whether the record carries decomposed orbital
// parameters. Mean motion is strictly positive for any real orbit, so a
// zero value marks the elements as absent.
func (r *CatalogRecord) HasElements() bool {
	return r != nil && r.MeanMotion > 0
}
