// Package metrics provides the Prometheus instrumentation for the
// ingestion pipeline (Pool, Batcher). Metrics are not part of spec.md's
// named scope, but the teacher ships Prometheus metrics alongside every
// sink it has, so this carries that ambient concern forward rather than
// leave the pipeline uninstrumented.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. Each DatabaseHandle
// owns its own Metrics registered against its own Registry, so repeated
// Registry.initialize calls in tests never collide on double
// registration the way a package-level prometheus.DefaultRegisterer would.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsEmitted *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec

	QueueDepth prometheus.Gauge

	BatchFlushLatency   prometheus.Histogram
	BatchSize           prometheus.Histogram
	PoolAcquireDuration prometheus.Histogram
}

// New creates and registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		RecordsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotrace_records_emitted_total",
				Help: "Total records accepted by the ingestion pipeline, by type.",
			},
			[]string{"type"},
		),

		RecordsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gotrace_records_dropped_total",
				Help: "Total records dropped before or during persistence, by reason.",
			},
			[]string{"reason"},
		),

		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gotrace_queue_depth",
				Help: "Number of records currently buffered in the writer's batch.",
			},
		),

		BatchFlushLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gotrace_batch_flush_latency_seconds",
				Help:    "Latency of flushing one batch of records to the store.",
				Buckets: prometheus.DefBuckets,
			},
		),

		BatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gotrace_batch_size",
				Help:    "Number of records in each flushed batch.",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1024, 2048},
			},
		),

		PoolAcquireDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gotrace_pool_acquire_duration_seconds",
				Help:    "Latency of acquiring a connection from the pool.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		m.RecordsEmitted,
		m.RecordsDropped,
		m.QueueDepth,
		m.BatchFlushLatency,
		m.BatchSize,
		m.PoolAcquireDuration,
	)

	return m
}

func (m *Metrics) IncEmitted(typ string) {
	if m == nil {
		return
	}
	m.RecordsEmitted.WithLabelValues(typ).Inc()
}

func (m *Metrics) IncDropped(reason string) {
	if m == nil {
		return
	}
	m.RecordsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddDropped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsDropped.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}

func (m *Metrics) ObserveFlush(size int, d time.Duration) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
	m.BatchFlushLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveAcquire(d time.Duration) {
	if m == nil {
		return
	}
	m.PoolAcquireDuration.Observe(d.Seconds())
}
