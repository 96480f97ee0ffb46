// Package metrics exposes Prometheus instrumentation for the hardening
// layer: operation rates, rejection reasons, chunk latency and pool
// saturation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Operations counts compress/decompress calls by operation and outcome.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimp",
		Name:      "operations_total",
		Help:      "Compress/decompress operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// Rejections counts gate and guard rejections by reason.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimp",
		Name:      "rejections_total",
		Help:      "Inputs rejected before reaching a codec, by reason.",
	}, []string{"reason"})

	// BytesIn counts payload bytes accepted per operation.
	BytesIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimp",
		Name:      "bytes_in_total",
		Help:      "Input bytes accepted, by operation.",
	}, []string{"operation"})

	// BytesOut counts result bytes produced per operation.
	BytesOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimp",
		Name:      "bytes_out_total",
		Help:      "Output bytes produced, by operation.",
	}, []string{"operation"})

	// ChunkLatency observes per-chunk worker latency.
	ChunkLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crimp",
		Name:      "chunk_latency_seconds",
		Help:      "Per-chunk worker processing latency.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// TasksInFlight gauges tasks dispatched but not yet completed.
	TasksInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimp",
		Name:      "tasks_in_flight",
		Help:      "Tasks dispatched to workers and not yet completed.",
	})

	// WorkersActive gauges lazily created workers.
	WorkersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimp",
		Name:      "workers_active",
		Help:      "Workers created in the pool.",
	})

	// BufferPoolRetained gauges bytes held by the buffer pool.
	BufferPoolRetained = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimp",
		Name:      "buffer_pool_retained_bytes",
		Help:      "Bytes currently retained by the buffer pool.",
	})

	// BreakerOpen gauges the circuit breaker state (1 = open).
	BreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimp",
		Name:      "breaker_open",
		Help:      "Circuit breaker state: 1 while open, 0 while closed.",
	})
)
