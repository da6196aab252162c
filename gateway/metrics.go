// Copyright 2025 OdooFlow
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "odooflow_gateway_requests_total",
			Help: "Total number of requests processed by the gateway",
		},
		[]string{"status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "odooflow_gateway_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
		},
		[]string{"tool"},
	)
	promPermissionDenials = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "odooflow_gateway_permission_denials_total",
			Help: "Total number of tool calls rejected by scope enforcement",
		},
	)
	promPoolConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "odooflow_gateway_pool_connections",
			Help: "Number of active pooled Odoo connections",
		},
	)
	promAuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "odooflow_gateway_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
	)
)

func init() {
	// Register Prometheus metrics
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
	prometheus.MustRegister(promPermissionDenials)
	prometheus.MustRegister(promPoolConnections)
	prometheus.MustRegister(promAuthFailures)
}
