// Package overlay renders the elevation raster as a flood-risk color image,
// one image pixel per grid cell.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
)

// Render fills every cell with its risk category color at the given opacity.
// Ocean cells are transparent, as are no-data cells and values outside every
// band.
func Render(g *raster.Georaster, opacity float64, metrics *observability.Metrics) *image.NRGBA {
	alpha := uint8(math.Round(clamp01(opacity) * 255))
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	palette := map[string]color.NRGBA{}
	counts := map[string]int{}

	for y, row := range g.Values {
		for x, v := range row {
			if g.IsNoData(v) {
				continue
			}
			counts[domain.Classify(v).Key]++

			fill, ok := domain.PixelFill(v)
			if !ok || fill == "" {
				continue
			}
			c, cached := palette[fill]
			if !cached {
				var err error
				c, err = parseHex(fill)
				if err != nil {
					continue
				}
				palette[fill] = c
			}
			c.A = alpha
			img.SetNRGBA(x, y, c)
		}
	}

	if metrics != nil {
		for key, n := range counts {
			metrics.Classifications.WithLabelValues("fill", key).Add(float64(n))
		}
	}
	return img
}

// EncodePNG renders g and writes it as PNG.
func EncodePNG(w io.Writer, g *raster.Georaster, opacity float64, metrics *observability.Metrics) error {
	if err := png.Encode(w, Render(g, opacity, metrics)); err != nil {
		return fmt.Errorf("encode overlay png: %w", err)
	}
	return nil
}

// parseHex decodes a "#rrggbb" color.
func parseHex(s string) (color.NRGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
