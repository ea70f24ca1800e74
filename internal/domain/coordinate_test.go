package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinateInput_Decimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Coordinate
	}{
		// Both values lie in [-90, 90], so swap correction always exchanges them.
		{"comma separated swaps", "6.5244,3.3792", Coordinate{Lat: 3.3792, Lng: 6.5244}},
		{"space separated swaps", "3.3792 6.5244", Coordinate{Lat: 6.5244, Lng: 3.3792}},
		{"comma and spaces", "  3.3792 ,  6.5244 ", Coordinate{Lat: 6.5244, Lng: 3.3792}},
		{"negative values", "-46.6333,-23.5505", Coordinate{Lat: -23.5505, Lng: -46.6333}},
		{"integers", "10 20", Coordinate{Lat: 20, Lng: 10}},
		// Second value is not a valid latitude, so the order is kept.
		{"longitude beyond 90 kept", "-33.86,151.21", Coordinate{Lat: -33.86, Lng: 151.21}},
		// First value is not a valid latitude but is a valid longitude: swapped.
		{"reversed with wide longitude", "151.21,-33.86", Coordinate{Lat: -33.86, Lng: 151.21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinateInput(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected.Lat, got.Lat, 1e-9)
			assert.InDelta(t, tt.expected.Lng, got.Lng, 1e-9)
		})
	}
}

func TestParseCoordinateInput_DMS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Coordinate
	}{
		// Longitude token first; both decimals are below 90 so swap fires.
		{"degree sign and quote", "3°23.4'E 6°31.5'N", Coordinate{Lat: 3.39, Lng: 6.525}},
		{"space separated", "3 23.4E 6 31.5N", Coordinate{Lat: 3.39, Lng: 6.525}},
		{"lower case hemispheres", "3 23.4e 6 31.5n", Coordinate{Lat: 3.39, Lng: 6.525}},
		{"south and west negate", "3 23.4W 6 31.5S", Coordinate{Lat: -3.39, Lng: -6.525}},
		{"wide longitude not swapped", "151 12.6E 33 51.6S", Coordinate{Lat: -33.86, Lng: 151.21}},
		{"embedded in text", "near 3°23.4'E 6°31.5'N please", Coordinate{Lat: 3.39, Lng: 6.525}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinateInput(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected.Lat, got.Lat, 1e-3)
			assert.InDelta(t, tt.expected.Lng, got.Lng, 1e-3)
		})
	}
}

func TestParseCoordinateInput_OutOfRange(t *testing.T) {
	_, err := ParseCoordinateInput("200,200")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 200.0, rangeErr.Lat)
	assert.Equal(t, 200.0, rangeErr.Lng)
	assert.Contains(t, err.Error(), "latitude must be between -90 and 90")
	assert.Contains(t, err.Error(), "longitude between -180 and 180")
	assert.Equal(t, InvalidRangeMessage, UserMessage(err))
}

func TestParseCoordinateInput_Overflow(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)
	for _, input := range []string{huge + ",5", "5," + huge, "-" + huge + " 5"} {
		t.Run(input[:8], func(t *testing.T) {
			_, err := ParseCoordinateInput(input)
			require.Error(t, err)

			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr), "got %v", err)
			assert.Equal(t, InvalidRangeMessage, UserMessage(err))
		})
	}
}

func TestParseCoordinateInput_OutOfRangeDMS(t *testing.T) {
	_, err := ParseCoordinateInput("200 10.0E 95 10.0N")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseCoordinateInput_NoMatch(t *testing.T) {
	for _, input := range []string{"not a coordinate", "", "   ", "Lagos", "6.5,", "N6 31.5 E3 23.4"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCoordinateInput(input)
			assert.ErrorIs(t, err, ErrNoMatch)
			assert.Empty(t, UserMessage(err), "no-match must stay silent")
		})
	}
}

func TestParseCoordinateInput_Idempotent(t *testing.T) {
	for _, input := range []string{"6.5244,3.3792", "3°23.4'E 6°31.5'N", "200,200", "nope"} {
		first, err1 := ParseCoordinateInput(input)
		second, err2 := ParseCoordinateInput(input)
		assert.Equal(t, first, second)
		assert.Equal(t, err1, err2)
	}
}

func TestCorrectAxisOrder(t *testing.T) {
	tests := []struct {
		name             string
		lat, lng         float64
		wantLat, wantLng float64
	}{
		{"both small always swap", 6.5, 3.3, 3.3, 6.5},
		{"lng beyond 90 keeps order", 10, 120, 10, 120},
		{"lat beyond 180 keeps order", 200, 10, 200, 10},
		{"boundary values swap", -180, 90, 90, -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng := correctAxisOrder(tt.lat, tt.lng)
			assert.Equal(t, tt.wantLat, lat)
			assert.Equal(t, tt.wantLng, lng)
		})
	}
}

func TestDMSToDecimal(t *testing.T) {
	v, ok := dmsToDecimal("6°31.5'N")
	require.True(t, ok)
	assert.InDelta(t, 6.525, v, 1e-9)

	v, ok = dmsToDecimal("3 23.4W")
	require.True(t, ok)
	assert.InDelta(t, -3.39, v, 1e-9)

	_, ok = dmsToDecimal("garbage")
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, InvalidFormatMessage, UserMessage(ErrInvalidFormat))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestCoordinate_String(t *testing.T) {
	assert.Equal(t, "6.524400, 3.379200", Coordinate{Lat: 6.5244, Lng: 3.3792}.String())
}
