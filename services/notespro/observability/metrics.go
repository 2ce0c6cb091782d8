// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the gateway.
//
// Metrics are exposed on /metrics and use the "notespro" namespace.
// All operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "notespro"

const gatewaySubsystem = "gateway"

// Metrics holds all Prometheus metrics for the gateway. Initialize once
// at startup via InitMetrics().
type Metrics struct {
	// RequestsTotal counts HTTP requests by method, route, and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency by route.
	RequestDurationSeconds *prometheus.HistogramVec

	// RemoteCallsTotal counts calls to the remote data service by
	// operation (list, insert, update, delete, refresh) and status.
	RemoteCallsTotal *prometheus.CounterVec

	// NotesFetchedTotal counts notes returned by successful list calls.
	NotesFetchedTotal prometheus.Counter

	// AssistRequestsTotal counts generative requests by kind
	// (note, replace, draft, ask) and status.
	AssistRequestsTotal *prometheus.CounterVec

	// AssistDurationSeconds measures generation latency by kind.
	AssistDurationSeconds *prometheus.HistogramVec

	// SessionRefreshesTotal counts token refresh attempts by status.
	SessionRefreshesTotal *prometheus.CounterVec

	// EventSubscribers tracks currently connected event stream clients.
	EventSubscribers prometheus.Gauge
}

// Default is the singleton instance, set by InitMetrics().
var Default *Metrics

// InitMetrics creates and registers all gateway metrics with the
// default registry. Call once at startup; a second call panics on
// duplicate registration.
func InitMetrics() *Metrics {
	Default = &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),

		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route"},
		),

		RemoteCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "remote_calls_total",
				Help:      "Total remote data service calls by operation and status",
			},
			[]string{"operation", "status"},
		),

		NotesFetchedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "notes_fetched_total",
				Help:      "Total notes returned by successful list calls",
			},
		),

		AssistRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "assist_requests_total",
				Help:      "Total generative requests by kind and status",
			},
			[]string{"kind", "status"},
		),

		AssistDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "assist_duration_seconds",
				Help:      "Generation latency in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),

		SessionRefreshesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "session_refreshes_total",
				Help:      "Total session token refresh attempts by status",
			},
			[]string{"status"},
		),

		EventSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "event_subscribers",
				Help:      "Currently connected event stream clients",
			},
		),
	}

	return Default
}

// RecordRemoteCall records one call to the remote data service.
func (m *Metrics) RecordRemoteCall(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RemoteCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordAssist records one generative request.
func (m *Metrics) RecordAssist(kind string, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.AssistRequestsTotal.WithLabelValues(kind, status).Inc()
	m.AssistDurationSeconds.WithLabelValues(kind).Observe(seconds)
}

// RecordRefresh records one session refresh attempt.
func (m *Metrics) RecordRefresh(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.SessionRefreshesTotal.WithLabelValues(status).Inc()
}
