// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package metrics declares the Prometheus collectors every controller in
// this repository increments (§6 Metrics), grounded on the
// per-concern CounterVec/HistogramVec declarations plus an aggregating
// Collector list idiom.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder bundles the four collectors §4.1 requires every controller to
// maintain for its kind: a reconcile counter, an action counter, and timed
// read/write phase histograms.
type Recorder struct {
	ReconcileCounter   prometheus.Counter
	ActionCounter      *prometheus.CounterVec
	ReadDurationSecs   prometheus.Histogram
	WriteDurationSecs  prometheus.Histogram
}

// NewRecorder constructs a Recorder for the given kind (one of "masks",
// "consumers", "providers", "reservations"), naming every collector
// vpno_<kind>_<metric> per §6.
func NewRecorder(kind string) *Recorder {
	return &Recorder{
		ReconcileCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vpno",
			Subsystem: kind,
			Name:      "reconcile_counter",
			Help:      "Total number of reconcile invocations for " + kind + ".",
		}),
		ActionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vpno",
			Subsystem: kind,
			Name:      "action_counter",
			Help:      "Total number of mutating actions performed while reconciling " + kind + ", by action.",
		}, []string{"action"}),
		ReadDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vpno",
			Subsystem: kind,
			Name:      "read_duration_seconds",
			Help:      "Duration of the read phase of a " + kind + " reconcile.",
			Buckets:   prometheus.DefBuckets,
		}),
		WriteDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vpno",
			Subsystem: kind,
			Name:      "write_duration_seconds",
			Help:      "Duration of the write phase of a " + kind + " reconcile.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Collectors returns r's collectors for registration.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.ReconcileCounter,
		r.ActionCounter,
		r.ReadDurationSecs,
		r.WriteDurationSecs,
	}
}

// HTTP metrics, shared by every subcommand's metrics server (§6).
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vpno",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests served by the metrics/health endpoint, by method/route/status.",
	}, []string{"method", "route", "status"})

	HTTPResponseSizeBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vpno",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "Size of HTTP responses served by the metrics/health endpoint, by route.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"route"})

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vpno",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests served by the metrics/health endpoint, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// HTTPCollectors returns the shared HTTP-layer collectors for registration.
func HTTPCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPResponseSizeBytes,
		HTTPRequestDurationSeconds,
	}
}
