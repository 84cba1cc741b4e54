// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Package metrics provides Prometheus instrumentation for Bookscout.
//
// Metrics are exposed at /metrics by the dashboard server (bookscout serve).
// The terminal shell registers the same collectors but does not export them.
//
// Remote API metrics:
//   - recombee_requests_total{operation, outcome}
//   - recombee_request_duration_seconds{operation}
//   - recombee_retries_total{operation}
//
// Circuit breaker metrics:
//   - circuit_breaker_state{name} (0=closed, 1=open, 2=half-open)
//   - circuit_breaker_requests_total{name, result}
//
// Dashboard HTTP metrics:
//   - http_requests_total{method, endpoint, status}
//   - http_request_duration_seconds{method, endpoint}
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Remote API metrics

	RecombeeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recombee_requests_total",
			Help: "Total number of Recombee API requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RecombeeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recombee_request_duration_seconds",
			Help:    "Recombee API request duration in seconds, including retries",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	RecombeeRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recombee_retries_total",
			Help: "Total number of transient-failure retries by operation",
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "result"},
	)

	// Dashboard HTTP metrics

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of dashboard HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Dashboard HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Catalog loader metrics

	CatalogBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_batches_total",
			Help: "Total number of catalog batch submissions by outcome",
		},
		[]string{"outcome"},
	)

	CatalogItemsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_loaded_total",
			Help: "Total number of catalog items submitted to the remote service",
		},
	)
)
