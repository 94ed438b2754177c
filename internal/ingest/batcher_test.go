package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shortontech/gotrace/internal/metrics"
)

type fakeInserter struct {
	mu       sync.Mutex
	batches  [][]Record
	dropN    int
	failErr  error
	attempts int
}

func (f *fakeInserter) InsertBatch(ctx context.Context, records []Record) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failErr != nil {
		return 0, f.failErr
	}
	cp := make([]Record, len(records))
	copy(cp, records)
	f.batches = append(f.batches, cp)
	return f.dropN, nil
}

func (f *fakeInserter) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeInserter) allRecords() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []Record
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

func (f *fakeInserter) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %s", timeout)
	}
}

func TestBatcherFlushesOnSize(t *testing.T) {
	ins := &fakeInserter{}
	b := NewBatcher(ins, 5, metrics.New())
	defer b.Shutdown()

	for i := 0; i < 12; i++ {
		b.Append(Record{SpanID: uuid.New(), Type: TypeLog})
	}

	// Two full batches of 5 land without an explicit flush; the
	// remaining 2 need the explicit flush (spec.md §8 scenario S4).
	waitFor(t, time.Second, func() bool { return ins.batchCount() == 2 })

	b.Flush()
	waitFor(t, time.Second, func() bool { return len(ins.allRecords()) == 12 })

	if got := ins.batchCount(); got != 3 {
		t.Fatalf("batch count = %d, want 3", got)
	}
}

func TestBatcherOrderingWithinProducer(t *testing.T) {
	ins := &fakeInserter{}
	b := NewBatcher(ins, 1024, metrics.New())
	defer b.Shutdown()

	for i := 0; i < 50; i++ {
		b.Append(Record{Message: string(rune('a' + i%26)), Type: TypeLog})
	}
	b.Flush()
	waitFor(t, time.Second, func() bool { return len(ins.allRecords()) == 50 })

	recs := ins.allRecords()
	for i := 0; i < 50; i++ {
		want := string(rune('a' + i%26))
		if recs[i].Message != want {
			t.Fatalf("record %d message = %q, want %q (order not preserved)", i, recs[i].Message, want)
		}
	}
}

func TestBatcherShutdownDrains(t *testing.T) {
	ins := &fakeInserter{}
	b := NewBatcher(ins, 100, metrics.New())

	for i := 0; i < 7; i++ {
		b.Append(Record{Type: TypeLog})
	}
	b.Shutdown()

	if got := len(ins.allRecords()); got != 7 {
		t.Fatalf("records persisted = %d, want 7", got)
	}
}

func TestBatcherShutdownIdempotentAfterWriterExit(t *testing.T) {
	ins := &fakeInserter{}
	b := NewBatcher(ins, 10, metrics.New())
	b.Shutdown()
	// A second Shutdown must not panic or block even though the writer
	// goroutine has already exited.
	b.Shutdown()
}

func TestBatcherWriteFailureDoesNotAbortPipeline(t *testing.T) {
	ins := &fakeInserter{failErr: context.DeadlineExceeded}
	b := NewBatcher(ins, 1, metrics.New())
	defer b.Shutdown()

	b.Append(Record{Type: TypeLog})
	waitFor(t, time.Second, func() bool { return ins.attemptCount() == 1 })
	// The batch was attempted (failErr returned) but the writer goroutine
	// must still be alive to accept more work.
	b.Append(Record{Type: TypeLog})
	b.Flush()
	waitFor(t, time.Second, func() bool { return ins.attemptCount() == 2 })
}
