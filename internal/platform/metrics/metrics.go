package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the kiosk server.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        *prometheus.CounterVec
	errorsTotal          prometheus.Counter
	roundsTotal          prometheus.Counter
	forcedRepeatsTotal   prometheus.Counter
	sessionsCreatedTotal prometheus.Counter
	sessionsEndedTotal   prometheus.Counter
	catalogScansTotal    prometheus.Counter
	mediaBytesTotal      prometheus.Counter
	catalogItems         prometheus.Gauge
	activeSessions       prometheus.Gauge
}

// New creates and registers Prometheus metrics for the kiosk server.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_requests_total",
			Help: "Total number of HTTP requests by route pattern and status class",
		}, []string{"route", "code"}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		roundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_rounds_total",
			Help: "Total number of display rounds picked",
		}),
		forcedRepeatsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_forced_repeats_total",
			Help: "Items shown again in the round right after they were shown",
		}),
		sessionsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_sessions_created_total",
			Help: "Total number of display sessions created",
		}),
		sessionsEndedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_sessions_ended_total",
			Help: "Total number of display sessions ended or evicted",
		}),
		catalogScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_catalog_scans_total",
			Help: "Total number of media directory scans",
		}),
		mediaBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_media_bytes_total",
			Help: "Total media bytes written to clients",
		}),
		catalogItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiosk_catalog_items",
			Help: "Number of media items found by the last scan",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiosk_active_sessions",
			Help: "Number of display sessions currently held",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.roundsTotal,
		m.forcedRepeatsTotal,
		m.sessionsCreatedTotal,
		m.sessionsEndedTotal,
		m.catalogScansTotal,
		m.mediaBytesTotal,
		m.catalogItems,
		m.activeSessions,
	)
	return m
}

// IncRequests counts one request for route with the given status code.
func (m *Metrics) IncRequests(route string, status int) {
	m.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// ObserveRound records one round and how many of its items were repeats.
func (m *Metrics) ObserveRound(repeats int) {
	m.roundsTotal.Inc()
	if repeats > 0 {
		m.forcedRepeatsTotal.Add(float64(repeats))
	}
}

// IncSessionsCreated increments the sessions created counter.
func (m *Metrics) IncSessionsCreated() {
	m.sessionsCreatedTotal.Inc()
}

// AddSessionsEnded adds n ended or evicted sessions.
func (m *Metrics) AddSessionsEnded(n int) {
	if n > 0 {
		m.sessionsEndedTotal.Add(float64(n))
	}
}

// ObserveCatalogScan records a directory scan that found items entries.
func (m *Metrics) ObserveCatalogScan(items int) {
	m.catalogScansTotal.Inc()
	m.catalogItems.Set(float64(items))
}

// AddMediaBytes adds n bytes of served media.
func (m *Metrics) AddMediaBytes(n int64) {
	if n > 0 {
		m.mediaBytesTotal.Add(float64(n))
	}
}

// SetActiveSessions sets the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
