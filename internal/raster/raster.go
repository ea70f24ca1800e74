// Package raster holds the elevation grid behind the map overlay and the
// lookups the click handler performs against it.
package raster

import (
	"errors"
	"fmt"
	"math"
)

// Georaster is a north-up elevation grid. Values are indexed [row][col] with
// row 0 at the northern edge.
type Georaster struct {
	XMin        float64
	YMax        float64
	PixelWidth  float64
	PixelHeight float64
	Width       int
	Height      int
	NoData      *float64
	Values      [][]float64
}

// Bounds is a south-west / north-east box in degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Validate checks the grid geometry against its sample rows.
func (g *Georaster) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("invalid grid size %dx%d", g.Width, g.Height)
	}
	if !validPixelSize(g.PixelWidth) || !validPixelSize(g.PixelHeight) {
		return errors.New("pixel size must be positive and finite")
	}
	if len(g.Values) != g.Height {
		return fmt.Errorf("expected %d rows, got %d", g.Height, len(g.Values))
	}
	for i, row := range g.Values {
		if len(row) != g.Width {
			return fmt.Errorf("row %d: expected %d values, got %d", i, g.Width, len(row))
		}
	}
	return nil
}

// validPixelSize rejects NaN along with zero, negatives and infinity.
func validPixelSize(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// Pixel returns the grid column and row containing (lat, lng). The indices
// may lie outside the grid.
func (g *Georaster) Pixel(lat, lng float64) (x, y int) {
	x = int(math.Floor((lng - g.XMin) / g.PixelWidth))
	y = int(math.Floor((g.YMax - lat) / g.PixelHeight))
	return x, y
}

// Sample returns the elevation at (lat, lng). ok is false when the point
// falls outside the grid. No-data cells are returned as stored.
func (g *Georaster) Sample(lat, lng float64) (value float64, ok bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return 0, false
	}
	x, y := g.Pixel(lat, lng)
	if y < 0 || y >= g.Height || x < 0 || x >= g.Width {
		return 0, false
	}
	return g.Values[y][x], true
}

// IsNoData reports whether v is the grid's no-data marker.
func (g *Georaster) IsNoData(v float64) bool {
	return g.NoData != nil && v == *g.NoData
}

// Bounds returns the geographic extent of the grid.
func (g *Georaster) Bounds() Bounds {
	return Bounds{
		South: g.YMax - float64(g.Height)*g.PixelHeight,
		West:  g.XMin,
		North: g.YMax,
		East:  g.XMin + float64(g.Width)*g.PixelWidth,
	}
}
