package ingest

import (
	"context"

	"github.com/shortontech/gotrace/internal/metrics"
)

// Handle owns the Pool, the Batcher (and through it the record channel
// and writer goroutine), for one process. It is created once via Open
// and destroyed via Close, which drains buffered records before
// releasing the Pool.
type Handle struct {
	pool    *Pool
	batcher *Batcher
	metrics *metrics.Metrics
}

// Options configures Open.
type Options struct {
	BatchSize      int
	PoolCapacity   int
	DBNameOverride string
}

// Open runs the Provisioner, opens the Pool, and starts the Batcher.
// It returns the effective database name alongside the Handle.
func Open(ctx context.Context, endpoint string, opts Options) (*Handle, string, error) {
	ep, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, "", err
	}

	m := metrics.New()

	p := &Provisioner{}
	dbname, err := p.Provision(ctx, ep, opts.DBNameOverride)
	if err != nil {
		return nil, "", err
	}

	pool, err := OpenPool(ctx, ep, dbname, opts.PoolCapacity, m)
	if err != nil {
		return nil, "", err
	}

	batcher := NewBatcher(&PoolInserter{Pool: pool}, opts.BatchSize, m)

	return &Handle{pool: pool, batcher: batcher, metrics: m}, dbname, nil
}

// Append enqueues a record for asynchronous persistence.
func (h *Handle) Append(r Record) {
	h.batcher.Append(r)
}

// Flush issues a fire-and-forget flush of whatever is currently buffered.
func (h *Handle) Flush() {
	h.batcher.Flush()
}

// Metrics returns the handle's collectors and their Prometheus registry.
// The gotrace package does not expose the Handle, so this is reachable
// only from inside this module.
func (h *Handle) Metrics() *metrics.Metrics {
	return h.metrics
}

// Close drains buffered records (Shutdown joins the writer goroutine
// after its final flush) and then releases the Pool.
func (h *Handle) Close() {
	h.batcher.Shutdown()
	h.pool.Close()
}
