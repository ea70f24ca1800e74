package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/flood-risk-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-risk-map/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-map/internal/adapter/osm"
	"github.com/couchcryptid/flood-risk-map/internal/config"
	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/mapview"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/overlay"
	"github.com/couchcryptid/flood-risk-map/internal/pipeline"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
)

func main() {
	// A missing .env is fine; the environment may be set by the container.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Place search (feature-flagged via GEOCODER_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		client := osm.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, metrics, logger)
		geocoder = osm.NewCachedGeocoder(client, cfg.GeocoderCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("place search enabled", "base_url", cfg.GeocoderBaseURL, "cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)
	} else {
		logger.Info("place search disabled")
	}

	// Lookup event stream (feature-flagged via EVENTS_ENABLED).
	var (
		recorder    mapview.Recorder
		writer      *kafkaadapter.Writer
		recorderErr = make(chan error, 1)
	)
	if cfg.EventsEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		r := pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		recorder = r
		go func() { recorderErr <- r.Run(ctx) }()
		logger.Info("lookup events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		close(recorderErr)
	}

	// Elevation raster. Startup continues on failure; /readyz reports it and
	// a scheduled refresh may still load it.
	store := raster.NewStore(raster.NewSource(cfg.RasterSource, cfg.RasterFetchTimeout), logger, metrics)
	view := mapview.New(store, geocoder, recorder, logger, metrics)
	overlayCache := overlay.NewCache(mapview.DEMOverlay.Opacity, logger, metrics)
	store.OnLoad(func(g *raster.Georaster) { view.FitBounds(g.Bounds()) })
	store.OnLoad(overlayCache.Update)

	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.RasterFetchTimeout)
	_ = store.Refresh(loadCtx)
	cancelLoad()

	var stopRefresh func()
	if cfg.RasterRefreshSchedule != "" {
		stopRefresh, err = store.StartRefresh(cfg.RasterRefreshSchedule, cfg.RasterFetchTimeout)
		if err != nil {
			logger.Error("invalid raster refresh schedule", "schedule", cfg.RasterRefreshSchedule, "error", err)
			os.Exit(1)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, view, overlayCache, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if stopRefresh != nil {
		stopRefresh()
	}
	// Wait for the recorder's final flush before closing the writer.
	select {
	case err := <-recorderErr:
		if err != nil {
			logger.Error("event recorder error", "error", err)
		}
	case <-shutdownCtx.Done():
		logger.Warn("event recorder did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
