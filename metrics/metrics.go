// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the prometheus collectors of the server. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Narration outcomes
const (
	OutcomeNarrated   = "narrated"
	OutcomeIncomplete = "incomplete"
	OutcomeError      = "error"
)

// Load outcomes
const (
	LoadOK     = "ok"
	LoadFailed = "failed"
)

type Metrics struct {
	registry        *prometheus.Registry
	narrations      *prometheus.CounterVec
	datasetLoads    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		narrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myvote",
			Name:      "narrations_total",
			Help:      "Ballot narrations by chamber, method and outcome.",
		}, []string{"chamber", "method", "outcome"}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myvote",
			Name:      "dataset_loads_total",
			Help:      "Result dataset loads by chamber, driver and outcome.",
		}, []string{"chamber", "driver", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "myvote",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.narrations,
		m.datasetLoads,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Narration(chamber, method, outcome string) {
	if m == nil {
		return
	}
	m.narrations.WithLabelValues(chamber, method, outcome).Inc()
}

func (m *Metrics) DatasetLoad(chamber, driver, outcome string) {
	if m == nil {
		return
	}
	m.datasetLoads.WithLabelValues(chamber, driver, outcome).Inc()
}

func (m *Metrics) Request(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
