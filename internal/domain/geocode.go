package domain

import (
	"context"
	"log/slog"
)

// ResolvePlace geocodes a search query that is not a coordinate. It returns
// ok == false when geocoder is nil, the lookup fails, or nothing usable comes
// back; failures are logged and otherwise swallowed so the search degrades to
// a silent no-op.
func ResolvePlace(ctx context.Context, query string, geocoder Geocoder, logger *slog.Logger) (Coordinate, GeocodingResult, bool) {
	if geocoder == nil || query == "" {
		return Coordinate{}, GeocodingResult{}, false
	}

	result, err := geocoder.ForwardGeocode(ctx, query)
	if err != nil {
		logger.Warn("place search failed", "query", query, "error", err)
		return Coordinate{}, GeocodingResult{}, false
	}
	if result.Lat == 0 && result.Lon == 0 {
		logger.Debug("place search returned no result", "query", query)
		return Coordinate{}, result, false
	}

	c := Coordinate{Lat: result.Lat, Lng: result.Lon}
	if !c.Valid() {
		logger.Warn("place search returned invalid coordinate", "query", query, "lat", result.Lat, "lon", result.Lon)
		return Coordinate{}, result, false
	}
	return c, result, true
}
