package ingest

import (
	"context"
	"time"

	"github.com/shortontech/gotrace/internal/diag"
	"github.com/shortontech/gotrace/internal/metrics"
)

// DefaultBatchSize is the writer thread's target batch size, per
// spec.md §4.C.
const DefaultBatchSize = 1024

const flushTimeout = 10 * time.Second

// inserter is the minimal surface Batcher needs from a backing store.
// PoolInserter is the production implementation; tests substitute a
// fake, the same role go-sqlmock plays for the teacher's PGSink tests.
type inserter interface {
	InsertBatch(ctx context.Context, records []Record) (dropped int, err error)
}

type commandKind int

const (
	cmdAppend commandKind = iota
	cmdFlush
	cmdShutdown
)

type command struct {
	kind   commandKind
	record Record
}

// Batcher owns the record channel and the dedicated writer goroutine.
// The channel is a bounded substitute for spec.md §4.C's logically
// unbounded queue: a generously sized buffer means Append only blocks
// under sustained producer/writer imbalance, never on ordinary hot-path
// emission.
type Batcher struct {
	ch        chan command
	batchSize int
	ins       inserter
	metrics   *metrics.Metrics
	done      chan struct{}
}

// NewBatcher starts the writer goroutine and returns the Batcher handle.
func NewBatcher(ins inserter, batchSize int, m *metrics.Metrics) *Batcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	b := &Batcher{
		ch:        make(chan command, 16*batchSize),
		batchSize: batchSize,
		ins:       ins,
		metrics:   m,
		done:      make(chan struct{}),
	}
	go b.run()
	return b
}

// Append enqueues a record. It never performs I/O itself; the dedicated
// writer goroutine persists it asynchronously.
func (b *Batcher) Append(r Record) {
	b.ch <- command{kind: cmdAppend, record: r}
	b.metrics.IncEmitted(r.Type.String())
}

// Flush requests an out-of-band flush of whatever is currently buffered.
// It is fire-and-forget: it does not wait for the flush to complete.
func (b *Batcher) Flush() {
	b.ch <- command{kind: cmdFlush}
}

// Shutdown requests a final flush and waits for the writer goroutine to
// exit. It must not panic if the channel is already closed by other
// means, so the send is guarded by recover. Shutdown itself never closes
// ch: a second call's command is buffered unread, and the call returns
// at once because the writer goroutine has already exited.
func (b *Batcher) Shutdown() {
	func() {
		defer func() { recover() }() //nolint:errcheck // channel may already be closed
		b.ch <- command{kind: cmdShutdown}
	}()
	<-b.done
}

func (b *Batcher) run() {
	defer close(b.done)

	batch := make([]Record, 0, b.batchSize)
	for cmd := range b.ch {
		switch cmd.kind {
		case cmdAppend:
			batch = append(batch, cmd.record)
			b.metrics.SetQueueDepth(len(batch))
			if len(batch) >= b.batchSize {
				batch = b.flush(batch)
			}
		case cmdFlush:
			if len(batch) > 0 {
				batch = b.flush(batch)
			}
		case cmdShutdown:
			if len(batch) > 0 {
				batch = b.flush(batch)
			}
			return
		}
	}
	if len(batch) > 0 {
		b.flush(batch)
	}
}

// flush persists batch and returns it truncated to length zero,
// retaining its capacity for reuse.
func (b *Batcher) flush(batch []Record) []Record {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	dropped, err := b.ins.InsertBatch(ctx, batch)
	b.metrics.ObserveFlush(len(batch), time.Since(start))
	b.metrics.SetQueueDepth(0)

	if err != nil {
		// WriteFailed: per spec.md §7 this is never surfaced to the
		// caller. The whole batch is considered dropped; individual
		// row failures are handled by the inserter itself and counted
		// separately via dropped.
		diag.Printf("gotrace: batch flush failed: %v", err)
		b.metrics.AddDropped("write_failed", len(batch))
		return batch[:0]
	}
	if dropped > 0 {
		diag.Printf("gotrace: dropped %d of %d records in batch", dropped, len(batch))
		b.metrics.AddDropped("write_failed", dropped)
	}
	return batch[:0]
}
