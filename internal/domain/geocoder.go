package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider importance score
}

// Geocoder resolves free-form place names typed into the search box.
type Geocoder interface {
	// ForwardGeocode converts a place query to coordinates. An empty result
	// with a nil error means nothing was found.
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
}
