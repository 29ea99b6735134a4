// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/we-are-mono/l23net/types"
)

const metricsNamespace = "l23net"

// Metrics records discovery runs on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	duration     prometheus.Histogram
	errors       prometheus.Counter
	entities     *prometheus.GaugeVec
	ovsAvailable prometheus.Gauge
}

// NewMetrics creates and registers the discovery metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "discovery_duration_seconds",
			Help:      "Time taken by one topology discovery run.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "discovery_errors_total",
			Help:      "Number of discovery runs that failed.",
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "entities",
			Help:      "Number of entities found by the last successful discovery, by kind.",
		}, []string{"kind"}),
		ovsAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "ovs_available",
			Help:      "1 if Open vSwitch answered during the last successful discovery.",
		}),
	}
	m.registry.MustRegister(m.duration, m.errors, m.entities, m.ovsAvailable)
	return m
}

// Observe records one discovery run.
func (m *Metrics) Observe(topo *types.Topology, elapsed time.Duration, err error) {
	m.duration.Observe(elapsed.Seconds())
	if err != nil || topo == nil {
		m.errors.Inc()
		return
	}

	m.entities.WithLabelValues("port").Set(float64(len(topo.Ports)))
	m.entities.WithLabelValues("bridge").Set(float64(len(topo.Bridges)))
	m.entities.WithLabelValues("bond").Set(float64(len(topo.Bonds)))
	m.entities.WithLabelValues("vlan").Set(float64(len(topo.VLANs)))
	m.entities.WithLabelValues("diagnostic").Set(float64(len(topo.Diagnostics)))
	if topo.OVSAvailable {
		m.ovsAvailable.Set(1)
	} else {
		m.ovsAvailable.Set(0)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
