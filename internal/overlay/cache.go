package overlay

import (
	"bytes"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
)

// Cache holds the PNG for the currently loaded raster. Update renders once
// per load; PNG serves the stored bytes.
type Cache struct {
	opacity float64
	logger  *slog.Logger
	metrics *observability.Metrics
	png     atomic.Pointer[[]byte]
}

// NewCache creates an empty cache that renders at the given opacity.
func NewCache(opacity float64, logger *slog.Logger, metrics *observability.Metrics) *Cache {
	return &Cache{opacity: opacity, logger: logger, metrics: metrics}
}

// Update renders g and replaces the cached image. On an encode failure the
// previous image is kept. Its signature matches raster.Store.OnLoad.
func (c *Cache) Update(g *raster.Georaster) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, g, c.opacity, c.metrics); err != nil {
		c.logger.Error("overlay render failed", "error", err)
		return
	}
	b := buf.Bytes()
	c.png.Store(&b)
	c.logger.Debug("overlay rendered", "width", g.Width, "height", g.Height, "bytes", len(b))
}

// PNG returns the cached image. ok is false before the first Update.
func (c *Cache) PNG() ([]byte, bool) {
	b := c.png.Load()
	if b == nil {
		return nil, false
	}
	return *b, true
}
