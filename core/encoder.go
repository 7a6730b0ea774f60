package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/orbital-tracker/model"
)

// Two-line element sets are 69 columns: 68 data columns plus a trailing
// modulo-10 checksum digit. EncodeLines and ParseLines implement the layout
// exactly so the output is interchangeable with any standard SGP4 input.
const elementLineLen = 69

// EncodeLines synthesizes a two-line element set from a record's decomposed
// orbital parameters. It is a pure formatter: orbital element ranges are the
// propagator's problem, not ours, so any record with a parseable designator
// and epoch encodes successfully.
func EncodeLines(rec *model.CatalogRecord) (line1, line2 string) {
	class := rec.Classification
	if class == 0 {
		class = 'U'
	}
	elset := rec.ElementSetNo
	if elset == 0 {
		elset = 999
	}

	body1 := fmt.Sprintf("1 %05d%c %-8s %s %s %s %s %d %4d",
		rec.NoradID,
		class,
		encodeDesignator(rec.IntlDesig),
		encodeEpoch(rec.Epoch),
		encodeMeanMotionDot(rec.MeanMotionDot),
		encodePointAssumed(rec.MeanMotionDDot),
		encodePointAssumed(rec.BStar),
		rec.EphemerisType,
		elset,
	)
	body2 := fmt.Sprintf("2 %05d %8.4f %8.4f %07.0f %8.4f %8.4f %11.8f%05d",
		rec.NoradID,
		rec.Inclination,
		rec.RightAscension,
		rec.Eccentricity*1e7,
		rec.ArgOfPericenter,
		rec.MeanAnomaly,
		rec.MeanMotion,
		rec.RevAtEpoch%100000,
	)

	line1 = body1 + strconv.Itoa(lineChecksum(body1))
	line2 = body2 + strconv.Itoa(lineChecksum(body2))
	return line1, line2
}

// lineChecksum sums the data columns of an element line: digits count as
// their value, a minus sign counts as 1, everything else as 0.
func lineChecksum(s string) int {
	sum := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			sum += int(r - '0')
		case r == '-':
			sum++
		}
	}
	return sum % 10
}

// encodeDesignator packs a dash-delimited international designator
// ("1998-067-A") into the 8-column launch field ("98067A  "). Records whose
// designator has fewer than two parts get the placeholder field.
func encodeDesignator(desig string) string {
	parts := strings.Split(desig, "-")
	if len(parts) < 2 {
		return "00000A  "
	}

	year := parts[0]
	if len(year) > 2 {
		year = year[len(year)-2:]
	}
	for len(year) < 2 {
		year = "0" + year
	}

	num := parts[1]
	for len(num) < 3 {
		num = "0" + num
	}

	piece := "A"
	if len(parts) >= 3 && parts[2] != "" {
		piece = parts[2]
	}

	field := year + num + piece
	if len(field) > 8 {
		field = field[:8]
	}
	return field + strings.Repeat(" ", 8-len(field))
}

// encodeEpoch renders an epoch as two-digit year plus fractional day of year
// to eight decimals, zero-padded to the standard 14 columns.
func encodeEpoch(t time.Time) string {
	t = t.UTC()
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	doy := t.Sub(yearStart).Seconds()/86400.0 + 1
	return fmt.Sprintf("%02d%012.8f", t.Year()%100, doy)
}

// encodeMeanMotionDot renders the first derivative of mean motion with a
// leading sign column and no zero before the decimal point (" .00000204").
// The field has no integer digits, so magnitudes that would round to 1 or
// above saturate at the largest representable value.
func encodeMeanMotionDot(v float64) string {
	sign := " "
	if v < 0 {
		sign = "-"
	}
	a := math.Abs(v)
	if a > 0.99999999 {
		a = 0.99999999
	}
	s := strconv.FormatFloat(a, 'f', 8, 64)
	return sign + strings.TrimPrefix(s, "0")
}

// encodePointAssumed renders a value in the 8-column assumed-decimal-point
// exponent notation used for the second derivative and B-star fields: sign,
// five mantissa digits, exponent sign, one exponent digit (" 10270-4" is
// 0.10270e-4). Magnitudes below 1e-10 collapse to the literal zero form.
func encodePointAssumed(v float64) string {
	a := math.Abs(v)
	if a < 1e-10 {
		return " 00000-0"
	}
	sign := " "
	if v < 0 {
		sign = "-"
	}

	exp := int(math.Floor(math.Log10(a))) + 1
	mant := int(math.Round(a / math.Pow(10, float64(exp)) * 1e5))
	if mant >= 100000 {
		mant /= 10
		exp++
	}

	if exp >= 0 {
		return fmt.Sprintf("%s%05d+%d", sign, mant, exp)
	}
	return fmt.Sprintf("%s%05d-%d", sign, mant, -exp)
}

// ParseLines extracts a catalog record from a two-line element set,
// verifying both checksums. The returned record keeps the original lines so
// resolution can feed them to the propagator verbatim.
func ParseLines(line1, line2 string) (*model.CatalogRecord, error) {
	if len(line1) < elementLineLen || len(line2) < elementLineLen {
		return nil, fmt.Errorf("element lines must be %d columns, got %d and %d",
			elementLineLen, len(line1), len(line2))
	}
	if line1[0] != '1' || line2[0] != '2' {
		return nil, fmt.Errorf("unexpected line markers %q, %q", line1[0], line2[0])
	}
	if err := verifyChecksum(line1); err != nil {
		return nil, fmt.Errorf("line 1: %w", err)
	}
	if err := verifyChecksum(line2); err != nil {
		return nil, fmt.Errorf("line 2: %w", err)
	}

	noradID, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return nil, fmt.Errorf("parse catalog number: %w", err)
	}

	epoch, err := parseEpoch(line1[18:20], line1[20:32])
	if err != nil {
		return nil, fmt.Errorf("parse epoch: %w", err)
	}

	ndot, err := strconv.ParseFloat(strings.TrimSpace(line1[33:43]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse mean motion derivative: %w", err)
	}
	nddot, err := parsePointAssumed(line1[44:52])
	if err != nil {
		return nil, fmt.Errorf("parse mean motion second derivative: %w", err)
	}
	bstar, err := parsePointAssumed(line1[53:61])
	if err != nil {
		return nil, fmt.Errorf("parse bstar: %w", err)
	}

	rec := &model.CatalogRecord{
		NoradID:        noradID,
		IntlDesig:      unpackDesignator(line1[9:17]),
		Epoch:          epoch,
		MeanMotionDot:  ndot,
		MeanMotionDDot: nddot,
		BStar:          bstar,
		Classification: line1[7],
		LineOne:        line1,
		LineTwo:        line2,
	}
	rec.EphemerisType, _ = strconv.Atoi(strings.TrimSpace(line1[62:63]))
	rec.ElementSetNo, _ = strconv.Atoi(strings.TrimSpace(line1[64:68]))

	fields := []struct {
		dst *float64
		raw string
	}{
		{&rec.Inclination, line2[8:16]},
		{&rec.RightAscension, line2[17:25]},
		{&rec.ArgOfPericenter, line2[34:42]},
		{&rec.MeanAnomaly, line2[43:51]},
		{&rec.MeanMotion, line2[52:63]},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return nil, fmt.Errorf("parse element field %q: %w", f.raw, err)
		}
		*f.dst = v
	}

	ecc, err := strconv.ParseFloat("0."+strings.TrimSpace(line2[26:33]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse eccentricity: %w", err)
	}
	rec.Eccentricity = ecc
	rec.RevAtEpoch, _ = strconv.Atoi(strings.TrimSpace(line2[63:68]))

	return rec, nil
}

func verifyChecksum(line string) error {
	want := lineChecksum(line[:elementLineLen-1])
	have := int(line[elementLineLen-1] - '0')
	if have != want {
		return fmt.Errorf("checksum mismatch: have %d, want %d", have, want)
	}
	return nil
}

func parseEpoch(yearRaw, doyRaw string) (time.Time, error) {
	yy, err := strconv.Atoi(strings.TrimSpace(yearRaw))
	if err != nil {
		return time.Time{}, err
	}
	doy, err := strconv.ParseFloat(strings.TrimSpace(doyRaw), 64)
	if err != nil {
		return time.Time{}, err
	}

	// Standard two-digit epoch convention: years below 57 are 2000s.
	year := yy + 1900
	if yy < 57 {
		year = yy + 2000
	}
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return yearStart.Add(time.Duration((doy - 1) * 86400 * float64(time.Second))), nil
}

func parsePointAssumed(field string) (float64, error) {
	mant, err := strconv.ParseFloat("0."+strings.TrimSpace(field[1:6]), 64)
	if err != nil {
		return 0, err
	}
	exp, err := strconv.Atoi(strings.TrimSpace(field[6:8]))
	if err != nil {
		return 0, err
	}
	v := mant * math.Pow(10, float64(exp))
	if field[0] == '-' {
		v = -v
	}
	return v, nil
}

// unpackDesignator rebuilds the dash-delimited designator from the packed
// 8-column launch field.
func unpackDesignator(field string) string {
	yearRaw := strings.TrimSpace(field[0:2])
	num := strings.TrimSpace(field[2:5])
	piece := strings.TrimSpace(field[5:])
	if yearRaw == "" || num == "" {
		return ""
	}
	yy, err := strconv.Atoi(yearRaw)
	if err != nil {
		return ""
	}
	year := yy + 1900
	if yy < 57 {
		year = yy + 2000
	}
	if piece == "" {
		piece = "A"
	}
	return fmt.Sprintf("%d-%s-%s", year, num, piece)
}
