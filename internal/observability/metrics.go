package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the geocoding
// pipeline.
type Metrics struct {
	GeocodeRequests     *prometheus.CounterVec // labels: stage, outcome={success,error,empty}
	GeocodeCacheLookups *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeResolutions  *prometheus.CounterVec // labels: outcome={resolved,not_found}
	ProviderDuration    prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GeocodeRequests,
		m.GeocodeCacheLookups,
		m.GeocodeResolutions,
		m.ProviderDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bloodlink",
			Name:      "geocode_requests_total",
			Help:      "Nominatim requests by fallback stage and outcome.",
		}, []string{"stage", "outcome"}),
		GeocodeCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bloodlink",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		GeocodeResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bloodlink",
			Name:      "geocode_resolutions_total",
			Help:      "Address resolutions by final outcome.",
		}, []string{"outcome"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bloodlink",
			Name:      "geocode_provider_duration_seconds",
			Help:      "Nominatim request duration in seconds, gate wait included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 1.5, 2.5, 5, 10},
		}),
	}
}
