// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/admindeck/admindeck/internal/auth"
)

// Metrics contains the AdminDeck Prometheus metrics.
type Metrics struct {
	LoginsTotal         *prometheus.CounterVec
	SessionEventsTotal  *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the AdminDeck metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admindeck_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		SessionEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admindeck_session_events_total",
				Help: "Total number of session lifecycle events by type",
			},
			[]string{"event"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admindeck_http_requests_total",
				Help: "Total number of API requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admindeck_http_request_duration_seconds",
				Help:    "API request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(m.LoginsTotal, m.SessionEventsTotal, m.HTTPRequestsTotal, m.HTTPRequestDuration)
	return m
}

// RecordLogin implements auth.MetricsRecorder.
func (m *Metrics) RecordLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordSessionEvent implements auth.MetricsRecorder.
func (m *Metrics) RecordSessionEvent(event string) {
	m.SessionEventsTotal.WithLabelValues(event).Inc()
}

// ObserveHTTPRequest records one completed API request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Compile-time interface check.
var _ auth.MetricsRecorder = (*Metrics)(nil)
