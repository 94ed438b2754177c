package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncEmitted(t *testing.T) {
	m := New()
	m.IncEmitted("log")
	m.IncEmitted("log")
	m.IncEmitted("span_start")

	if got := testutil.ToFloat64(m.RecordsEmitted.WithLabelValues("log")); got != 2 {
		t.Fatalf("log count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RecordsEmitted.WithLabelValues("span_start")); got != 1 {
		t.Fatalf("span_start count = %v, want 1", got)
	}
}

func TestIncDropped(t *testing.T) {
	m := New()
	m.IncDropped("write_failed")

	if got := testutil.ToFloat64(m.RecordsDropped.WithLabelValues("write_failed")); got != 1 {
		t.Fatalf("write_failed count = %v, want 1", got)
	}
}

func TestSetQueueDepth(t *testing.T) {
	m := New()
	m.SetQueueDepth(42)

	if got := testutil.ToFloat64(m.QueueDepth); got != 42 {
		t.Fatalf("queue depth = %v, want 42", got)
	}
}

func TestObserveFlushAndAcquire(t *testing.T) {
	m := New()
	m.ObserveFlush(100, 5*time.Millisecond)
	m.ObserveAcquire(1 * time.Millisecond)

	if got := testutil.CollectAndCount(m.BatchFlushLatency); got != 1 {
		t.Fatalf("batch flush latency collected metrics = %d, want 1", got)
	}
	if got := testutil.CollectAndCount(m.PoolAcquireDuration); got != 1 {
		t.Fatalf("pool acquire duration collected metrics = %d, want 1", got)
	}
}

// Nil receiver calls must be safe: Pool/Batcher code never branches on
// whether metrics are present.
func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.IncEmitted("log")
	m.IncDropped("write_failed")
	m.SetQueueDepth(1)
	m.ObserveFlush(1, time.Millisecond)
	m.ObserveAcquire(time.Millisecond)
}
