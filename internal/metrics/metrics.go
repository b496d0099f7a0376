// Package metrics holds the Prometheus collectors of the time machine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	lookups         *prometheus.CounterVec
	duplicateLast   prometheus.Counter
	resolutions     *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timemachine",
			Name:      "snapshot_lookups_total",
			Help:      "Snapshot lookups by result (hit, miss).",
		}, []string{"result"}),
		duplicateLast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "timemachine",
			Name:      "duplicate_last_snapshots_total",
			Help:      "Lookups that found more than one snapshot flagged as last.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timemachine",
			Name:      "resolutions_total",
			Help:      "Resource period resolutions by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.lookups, m.duplicateLast, m.resolutions, m.requests, m.requestDuration)
	return m
}

// ObserveLookup counts one snapshot lookup.
func (m *Metrics) ObserveLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(result).Inc()
}

// ObserveDuplicateLast counts a lookup that broke the single-last-snapshot invariant.
func (m *Metrics) ObserveDuplicateLast() {
	if m == nil {
		return
	}
	m.duplicateLast.Inc()
}

// ObserveResolution counts one resource resolution.
func (m *Metrics) ObserveResolution(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}
