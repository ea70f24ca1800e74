package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultRasterSource is the DEM shipped next to the map page.
const DefaultRasterSource = "data/lagos-dem.asc"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Elevation raster.
	RasterSource          string // file path or http(s) URL of an ESRI ASCII grid
	RasterFetchTimeout    time.Duration
	RasterRefreshSchedule string // cron expression, empty disables refresh

	// OpenStreetMap Nominatim place search.
	GeocoderEnabled   bool
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration
	GeocoderCacheSize int

	// Lookup event stream.
	EventsEnabled      bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	rasterTimeout, err := parsePositiveDuration("RASTER_FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RasterSource:          sharedcfg.EnvOrDefault("RASTER_SOURCE", DefaultRasterSource),
		RasterFetchTimeout:    rasterTimeout,
		RasterRefreshSchedule: os.Getenv("RASTER_REFRESH_SCHEDULE"),

		GeocoderEnabled:   os.Getenv("GEOCODER_ENABLED") == "true",
		GeocoderBaseURL:   sharedcfg.EnvOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "flood-risk-map/1.0"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderCacheSize: parseCacheSize(),

		EventsEnabled:      os.Getenv("EVENTS_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "flood-map-lookups"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.RasterSource == "" {
		return nil, errors.New("RASTER_SOURCE is required")
	}
	if cfg.GeocoderEnabled {
		if u, err := url.Parse(cfg.GeocoderBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, errors.New("GEOCODER_BASE_URL must be an http(s) URL")
		}
	}
	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.EventsEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when EVENTS_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
