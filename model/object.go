package model

// Category is the fixed object taxonomy derived from catalog names.
type Category string

const (
	CategoryActive     Category = "active"
	CategoryStarlink   Category = "starlink"
	CategoryStation    Category = "station"
	CategoryDebris     Category = "debris"
	CategoryRocketBody Category = "rocket_body"
)

// GeodeticPosition is a sub-point on the rotating Earth ellipsoid plus the
// object's inertial speed. Latitude and longitude in degrees, altitude in
// kilometres, speed in km/s. Values are produced fresh per (object, instant)
// pair and never cached.
type GeodeticPosition struct {
	Latitude  float64 // [-90, 90]
	Longitude float64 // [-180, 180]
	Altitude  float64 // above the ellipsoid; > 0 for anything still in orbit
	Speed     float64
}

// ProcessedObject is the result of one propagation pass for one record.
// Immutable once produced; a later pass supersedes it rather than mutating.
type ProcessedObject struct {
	NoradID   int
	Name      string
	IntlDesig string

	Position GeodeticPosition
	Category Category
	Country  string // "Unknown" when the designator attributes nothing

	// ReentryRisk is set when altitude is strictly below the reentry
	// threshold.
	ReentryRisk bool

	// Record points back at the originating catalog entry.
	Record *CatalogRecord
}
