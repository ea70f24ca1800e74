package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "floodmap"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Classification and lookup metrics.
	Classifications *prometheus.CounterVec // labels: path={popup,fill,api}, category
	Clicks          *prometheus.CounterVec // labels: outcome={popup,outside}
	Searches        *prometheus.CounterVec // labels: outcome={moved,place,alert,ignored}

	// Raster metrics.
	RasterLoads *prometheus.CounterVec // labels: outcome={success,error}
	RasterReady prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Lookup event recorder metrics.
	EventsRecorded       prometheus.Counter
	EventsDropped        prometheus.Counter
	EventsPublished      prometheus.Counter
	PublishErrors        prometheus.Counter
	RecorderRunning      prometheus.Gauge
	BatchSize            prometheus.Histogram
	BatchPublishDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      help("Elevation samples classified, by consumer path and category."),
		}, []string{"path", "category"}),
		Clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      help("Map click lookups by outcome."),
		}, []string{"outcome"}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      help("Search box submissions by outcome."),
		}, []string{"outcome"}),
		RasterLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raster_loads_total",
			Help:      help("Elevation raster load attempts by outcome."),
		}, []string{"outcome"}),
		RasterReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "raster_ready",
			Help:      help("1 when an elevation raster is loaded, 0 otherwise."),
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      help("Place search API requests by outcome."),
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      help("Place search cache lookups by result."),
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      help("Nominatim API request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      help("1 when place search is enabled, 0 otherwise."),
		}),
		EventsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_recorded_total",
			Help:      help("Lookup events accepted by the recorder."),
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      help("Lookup events dropped because the recorder buffer was full."),
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      help("Lookup events written to the event topic."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Failed batch writes to the event topic."),
		}),
		RecorderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recorder_running",
			Help:      help("1 when the event recorder is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_batch_size",
			Help:      help("Number of lookup events per published batch."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchPublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_batch_publish_duration_seconds",
			Help:      help("Duration of a batch write to the event topic."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Classifications,
		m.Clicks,
		m.Searches,
		m.RasterLoads,
		m.RasterReady,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.EventsRecorded,
		m.EventsDropped,
		m.EventsPublished,
		m.PublishErrors,
		m.RecorderRunning,
		m.BatchSize,
		m.BatchPublishDuration,
	}
}
