package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoMatch means the input matched neither coordinate grammar.
	// Callers drop it silently.
	ErrNoMatch = errors.New("input is not a coordinate")

	// ErrInvalidFormat means the degree/minutes grammar matched but a token
	// could not be converted.
	ErrInvalidFormat = errors.New("invalid coordinate format")

	// ErrOutOfRange is wrapped by *RangeError.
	ErrOutOfRange = errors.New("coordinate out of range")
)

// User-facing alert texts.
const (
	InvalidFormatMessage = "Invalid coordinate format!"
	InvalidRangeMessage  = "Invalid coordinate range! Latitude must be between -90 and 90, Longitude between -180 and 180."
)

var (
	// decimalPairRe matches two optionally signed decimals separated by an
	// optional comma and optional whitespace, e.g. "6.5244, 3.3792".
	decimalPairRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*,?\s*(-?\d+(?:\.\d+)?)$`)

	// dmsPairRe finds a longitude token followed by a latitude token anywhere
	// in the input, e.g. "3 23.4E 6 31.5N" or "3°23.4'E 6°31.5'N".
	dmsPairRe = regexp.MustCompile(`(?i)(\d{1,3}[°\s]\d{1,2}\.\d+['"′″]?[NSEW])\s+(\d{1,3}[°\s]\d{1,2}\.\d+['"′″]?[NSEW])`)

	// dmsTokenRe splits a single token into degrees, decimal minutes and hemisphere.
	dmsTokenRe = regexp.MustCompile(`(?i)(\d{1,3})[°\s](\d{1,2}\.\d+)['"′″]?([NSEW])`)
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both axes are inside world bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String formats the pair as "lat, lng" with 6 decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

// RangeError reports a parsed pair that lies outside world bounds after
// swap correction.
type RangeError struct {
	Lat float64
	Lng float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: lat %g, lng %g (latitude must be between -90 and 90, longitude between -180 and 180)",
		ErrOutOfRange, e.Lat, e.Lng)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// ParseCoordinateInput turns search box text into a coordinate. The decimal
// pair grammar is tried first, then the degree/minutes grammar. Either result
// goes through swap correction and range validation.
func ParseCoordinateInput(text string) (Coordinate, error) {
	text = strings.TrimSpace(text)

	if m := decimalPairRe.FindStringSubmatch(text); m != nil {
		lat, okLat := parseNumber(m[1])
		lng, okLng := parseNumber(m[2])
		if !okLat || !okLng {
			return Coordinate{}, ErrNoMatch
		}
		return normalize(lat, lng)
	}

	if m := dmsPairRe.FindStringSubmatch(text); m != nil {
		lng, okLng := dmsToDecimal(m[1])
		lat, okLat := dmsToDecimal(m[2])
		if !okLat || !okLng {
			return Coordinate{}, ErrInvalidFormat
		}
		return normalize(lat, lng)
	}

	return Coordinate{}, ErrNoMatch
}

// UserMessage returns the alert text for a parse error, or "" when the error
// should not be shown (nil or ErrNoMatch).
func UserMessage(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrNoMatch):
		return ""
	case errors.Is(err, ErrInvalidFormat):
		return InvalidFormatMessage
	case errors.Is(err, ErrOutOfRange):
		return InvalidRangeMessage
	default:
		return err.Error()
	}
}

func normalize(lat, lng float64) (Coordinate, error) {
	lat, lng = correctAxisOrder(lat, lng)
	c := Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return Coordinate{}, &RangeError{Lat: lat, Lng: lng}
	}
	return c, nil
}

// correctAxisOrder swaps a pair that could have been entered as lng, lat:
// the provisional longitude is a valid latitude and the provisional latitude
// a valid longitude. When both values are within [-90, 90] it always swaps.
func correctAxisOrder(lat, lng float64) (float64, float64) {
	if lng >= -90 && lng <= 90 && lat >= -180 && lat <= 180 {
		return lng, lat
	}
	return lat, lng
}

// dmsToDecimal converts a degree/decimal-minute token such as "6°31.5'N"
// to signed decimal degrees.
func dmsToDecimal(token string) (float64, bool) {
	m := dmsTokenRe.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	degrees, ok := parseNumber(m[1])
	if !ok {
		return 0, false
	}
	minutes, ok := parseNumber(m[2])
	if !ok {
		return 0, false
	}

	decimal := degrees + minutes/60
	switch strings.ToUpper(m[3]) {
	case "S", "W":
		decimal = -decimal
	}
	return decimal, true
}

// parseNumber parses a matched numeric token. Values too large for float64
// come back as ±Inf so range validation rejects them.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
