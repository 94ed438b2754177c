// Package gotrace is an embedded tracing library: it buffers log and
// span records in memory and persists them asynchronously to a
// dedicated PostgreSQL database, without asking the caller to run or
// configure a collector. Initialize once per process, obtain Tracers,
// call Flush at deterministic points, and call Shutdown before the
// process exits to drain whatever remains buffered. The package installs
// no process-exit hook of its own: records still buffered when the
// process exits without Shutdown are not persisted.
package gotrace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shortontech/gotrace/internal/ingest"
)

// registry is the process-wide, mutually exclusive slot described in
// spec.md §4.D. It holds at most one Handle for the life of the
// process; Initialize is one-shot.
type registry struct {
	mu     sync.Mutex
	handle *ingest.Handle
}

var reg registry

// Initialize builds the ingestion pipeline (Provisioner, Pool, Batcher)
// against endpoint and stores it in the process-wide slot. It may only
// succeed once per process; a second call fails with
// ErrAlreadyInitialized and leaves the first handle untouched.
//
// batchSize and dbName are optional: a zero batchSize defaults to
// ingest.DefaultBatchSize (1024), and an empty dbName lets the Provisioner derive one
// from the current date (or reuse one already embedded in endpoint).
func Initialize(endpoint string, batchSize int, dbName string) (effectiveDBName string, err error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.handle != nil {
		return "", ErrAlreadyInitialized
	}

	if _, err := ingest.ParseEndpoint(endpoint); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	// Initialize is the one place this library blocks on network I/O
	// (spec.md §5); there is no deadline on the caller's behalf, but the
	// Provisioner and Pool each bound their own internal retries/timeouts.
	h, dbname, err := ingest.Open(context.Background(), endpoint, ingest.Options{
		BatchSize:      batchSize,
		DBNameOverride: dbName,
	})
	if err != nil {
		if errors.Is(err, ingest.ErrConnect) {
			return "", fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
		return "", fmt.Errorf("%w: %v", ErrProvisionFailed, err)
	}

	reg.handle = h
	return dbname, nil
}

// Flush issues a fire-and-forget flush of whatever is currently
// buffered. It is a no-op, never an error, when the registry is not
// initialized.
func Flush() {
	reg.mu.Lock()
	h := reg.handle
	reg.mu.Unlock()
	if h != nil {
		h.Flush()
	}
}

// Shutdown drains buffered records and releases the pool. It is meant
// to be called once, from a process-exit hook; it is a no-op if the
// registry was never initialized.
func Shutdown() {
	reg.mu.Lock()
	h := reg.handle
	reg.handle = nil
	reg.mu.Unlock()
	if h != nil {
		h.Close()
	}
}

// emitFunc is the single chokepoint every Tracer/SpanScope operation
// uses to reach the ingestion pipeline. It is a package variable,
// rather than a plain function, solely so tests can substitute a
// recording stub in place of a live Registry.
var emitFunc = defaultEmit

// defaultEmit fails fast with ErrNotInitialized rather than blocking,
// since the registry slot is only ever read here, never written.
func defaultEmit(r Record) error {
	reg.mu.Lock()
	h := reg.handle
	reg.mu.Unlock()

	if h == nil {
		return ErrNotInitialized
	}
	h.Append(r)
	return nil
}
