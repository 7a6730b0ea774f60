package core

import (
	"strings"

	"github.com/signalsfoundry/orbital-tracker/model"
)

// ReentryAltitudeKm is the altitude below which an object is flagged as an
// atmospheric-reentry risk. Strictly below: an object at exactly 180 km is
// not flagged.
const ReentryAltitudeKm = 180.0

// stationNames are name fragments of crewed stations and their modules.
var stationNames = []string{
	"ISS",
	"ZARYA",
	"TIANGONG",
	"TIANHE",
	"WENTIAN",
	"MENGTIAN",
	"CSS",
}

// launchCountries maps designator substrings to country names. The slice
// order is load-bearing: codes are substring-matched against the whole
// designator and the first hit wins, so a code that is a substring of a
// longer one must come after it. Do not reorder or alphabetize.
var launchCountries = []struct {
	Code    string
	Country string
}{
	{"PRC", "China"},
	{"CIS", "Russia"},
	{"USA", "United States"},
	{"US", "United States"},
	{"UK", "United Kingdom"},
	{"FR", "France"},
	{"JPN", "Japan"},
	{"IND", "India"},
	{"ESA", "Europe"},
	{"GER", "Germany"},
	{"CAN", "Canada"},
	{"SKOR", "South Korea"},
	{"ISRA", "Israel"},
	{"IRAN", "Iran"},
}

// Classify derives the object category from name markers, checked in
// priority order. A Starlink marker beats a station fragment, which beats a
// debris marker, which beats a rocket-body marker; no marker means an
// active payload.
func Classify(name string) model.Category {
	upper := strings.ToUpper(name)

	switch {
	case strings.Contains(upper, "STARLINK"):
		return model.CategoryStarlink
	case containsAny(upper, stationNames):
		return model.CategoryStation
	case strings.Contains(upper, "DEB") || strings.Contains(upper, "DEBRIS"):
		return model.CategoryDebris
	case strings.Contains(upper, "R/B") || strings.Contains(upper, "ROCKET"):
		return model.CategoryRocketBody
	default:
		return model.CategoryActive
	}
}

// CountryOfOrigin attributes a launch country from the international
// designator. Designators with fewer than two dash-delimited parts are
// "Unknown" without scanning.
func CountryOfOrigin(desig string) string {
	if len(strings.Split(desig, "-")) < 2 {
		return "Unknown"
	}

	upper := strings.ToUpper(desig)
	for _, entry := range launchCountries {
		if strings.Contains(upper, entry.Code) {
			return entry.Country
		}
	}
	return "Unknown"
}

// ReentryRisk reports whether an altitude is below the reentry threshold.
func ReentryRisk(altitudeKm float64) bool {
	return altitudeKm < ReentryAltitudeKm
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
