package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// advisory service.
type Metrics struct {
	ClassificationsTotal *prometheus.CounterVec // labels: type, severity
	AlertsCreated        prometheus.Counter
	AlertsDeduplicated   prometheus.Counter
	AlertsExpired        prometheus.Counter
	ServiceRunning       prometheus.Gauge

	// Provider metrics.
	GeocodeRequests  *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache     *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	ProviderDuration *prometheus.HistogramVec // labels: provider, operation

	// Route advisory metrics.
	RouteAnalyses        prometheus.Counter
	RouteCitiesPerRoute  prometheus.Histogram
	RouteAnalysisSeconds prometheus.Histogram

	// Notification metrics.
	NotificationsTotal *prometheus.CounterVec // labels: channel, status
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ClassificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "classifications_total",
			Help:      "Classifier matches by alert type and severity.",
		}, []string{"type", "severity"}),
		AlertsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "alerts_created_total",
			Help:      "Total new alerts persisted to the ledger.",
		}),
		AlertsDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "alerts_deduplicated_total",
			Help:      "Total triggers folded into an existing active alert.",
		}),
		AlertsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "alerts_expired_total",
			Help:      "Total alerts deactivated after their 24h lifetime.",
		}),
		ServiceRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "advisory",
			Name:      "service_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "advisory",
			Name:      "provider_request_duration_seconds",
			Help:      "Outbound provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider", "operation"}),
		RouteAnalyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "route_analyses_total",
			Help:      "Total route advisories generated.",
		}),
		RouteCitiesPerRoute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "advisory",
			Name:      "route_cities_per_route",
			Help:      "Number of settlements assessed per route analysis.",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 15, 20},
		}),
		RouteAnalysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "advisory",
			Name:      "route_analysis_duration_seconds",
			Help:      "Duration of a complete route analysis.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advisory",
			Name:      "notifications_total",
			Help:      "Notification dispatch attempts by channel and status.",
		}, []string{"channel", "status"}),
	}

	prometheus.MustRegister(
		m.ClassificationsTotal,
		m.AlertsCreated,
		m.AlertsDeduplicated,
		m.AlertsExpired,
		m.ServiceRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.ProviderDuration,
		m.RouteAnalyses,
		m.RouteCitiesPerRoute,
		m.RouteAnalysisSeconds,
		m.NotificationsTotal,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ClassificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "advisory", Name: "classifications_total"}, []string{"type", "severity"}),
		AlertsCreated:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "advisory", Name: "alerts_created_total"}),
		AlertsDeduplicated:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "advisory", Name: "alerts_deduplicated_total"}),
		AlertsExpired:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "advisory", Name: "alerts_expired_total"}),
		ServiceRunning:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "advisory", Name: "service_running"}),
		GeocodeRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "advisory", Name: "geocode_requests_total"}, []string{"method", "outcome"}),
		GeocodeCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "advisory", Name: "geocode_cache_total"}, []string{"method", "result"}),
		ProviderDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "advisory", Name: "provider_request_duration_seconds"}, []string{"provider", "operation"}),
		RouteAnalyses:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "advisory", Name: "route_analyses_total"}),
		RouteCitiesPerRoute:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "advisory", Name: "route_cities_per_route"}),
		RouteAnalysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "advisory", Name: "route_analysis_duration_seconds"}),
		NotificationsTotal:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "advisory", Name: "notifications_total"}, []string{"channel", "status"}),
	}
}
