package raster

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flood-risk-map/internal/observability"
)

// ErrNotLoaded is returned by CheckReadiness before the first successful load.
var ErrNotLoaded = errors.New("elevation raster not loaded")

// Store holds the current raster. Readers never block a refresh; a failed
// refresh keeps the previous raster.
type Store struct {
	source  Source
	current atomic.Pointer[Georaster]
	onLoad  []func(*Georaster)
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore creates an empty store backed by source.
func NewStore(source Source, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{source: source, logger: logger, metrics: metrics}
}

// Refresh loads the raster from the source and swaps it in on success.
func (s *Store) Refresh(ctx context.Context) error {
	start := time.Now()
	g, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.RasterLoads.WithLabelValues("error").Inc()
		s.logger.Error("raster load failed", "source", s.source.String(), "error", err)
		return err
	}

	s.swap(g)
	s.metrics.RasterLoads.WithLabelValues("success").Inc()
	s.logger.Info("raster loaded",
		"source", s.source.String(),
		"width", g.Width,
		"height", g.Height,
		"duration", time.Since(start),
	)
	return nil
}

// Set replaces the current raster directly.
func (s *Store) Set(g *Georaster) {
	s.swap(g)
}

// OnLoad registers fn to run after every successful load, in registration
// order. Call it before the first Refresh.
func (s *Store) OnLoad(fn func(*Georaster)) {
	s.onLoad = append(s.onLoad, fn)
}

func (s *Store) swap(g *Georaster) {
	s.current.Store(g)
	s.metrics.RasterReady.Set(1)
	for _, fn := range s.onLoad {
		fn(g)
	}
}

// Current returns the loaded raster or nil.
func (s *Store) Current() *Georaster {
	return s.current.Load()
}

// Sample looks up (lat, lng) in the current raster. ok is false when nothing
// is loaded or the point is outside the grid.
func (s *Store) Sample(lat, lng float64) (float64, bool) {
	g := s.current.Load()
	if g == nil {
		return 0, false
	}
	return g.Sample(lat, lng)
}

// CheckReadiness reports whether a raster has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}
