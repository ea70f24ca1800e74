// Package domain models flood-risk classification for the Lagos coastal
// elevation map and the coordinate grammar accepted by the map search box.
//
// # Elevation Bands
//
// Elevation samples come from a pre-rendered digital elevation model (DEM) in
// metres above sea level. Each sample maps to one risk category. Bands are
// evaluated top to bottom and the first match wins:
//
//	value == 0        Ocean
//	0  < value <= 1   Very High Risk (0–1m)
//	1  < value <= 2   High Risk (1–2m)
//	2  < value <= 5   Medium Risk (2–5m)
//	5  < value <  10  Low Risk (5–10m)
//	10 < value <  15  Very Low Risk (10–15m)
//	15 < value <  80  Unaffected Area (15m+)
//
// Everything else (negative values, exactly 10, exactly 15, 80 and above, NaN,
// infinities) is out of range. The two consumers treat that differently and
// both behaviours are kept on purpose:
//
//	raster overlay  -> no fill at all ([PixelFill] reports ok == false)
//	click popup     -> the literal label "Out of Range" ([PopupLabel])
//
// Ocean pixels are also left unfilled on the overlay so the base map's water
// shows through; the legend still shows the Ocean swatch.
//
// # Coordinate Input
//
// The search box accepts two forms, tried in order:
//
//	decimal pair     "6.5244,3.3792"  "6.5244 3.3792"  "-12 130.5"
//	degree/minutes   "3 23.4E 6 31.5N"  "3°23.4'E 6°31.5'N"
//
// The degree/minutes form is always longitude token first, latitude token
// second. Degrees plus minutes/60 gives the decimal value, negated for S and W.
//
// After either form the pair goes through swap correction: when the second
// value is a valid latitude and the first a valid longitude, the two are
// exchanged. This always fires when both values lie in [-90, 90], including
// input that was already in latitude, longitude order. See [correctAxisOrder].
//
// Input matching neither form yields [ErrNoMatch], which callers drop silently.
// Only the degree/minutes form reports [ErrInvalidFormat].
package domain
