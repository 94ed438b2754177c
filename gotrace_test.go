package gotrace

import (
	"errors"
	"os"
	"testing"
)

// withClearRegistry saves and restores the registry slot around a test,
// since Initialize is process-wide one-shot state (spec.md §4.D) and
// these tests need to exercise both the empty and populated slot within
// the same process.
func withClearRegistry(t *testing.T, fn func()) {
	t.Helper()
	reg.mu.Lock()
	saved := reg.handle
	reg.handle = nil
	reg.mu.Unlock()

	defer func() {
		reg.mu.Lock()
		reg.handle = saved
		reg.mu.Unlock()
	}()

	fn()
}

func TestInitializeInvalidEndpoint(t *testing.T) {
	withClearRegistry(t, func() {
		_, err := Initialize("not-a-valid-endpoint", 0, "")
		if !errors.Is(err, ErrInvalidEndpoint) {
			t.Fatalf("err = %v, want ErrInvalidEndpoint", err)
		}
	})
}

func TestEmitNotInitialized(t *testing.T) {
	withClearRegistry(t, func() {
		err := emitFunc(Record{Type: TypeLog, Message: "hi"})
		if !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("err = %v, want ErrNotInitialized", err)
		}
	})
}

func TestFlushNoopWhenUninitialized(t *testing.T) {
	withClearRegistry(t, func() {
		Flush() // must not panic
	})
}

func TestShutdownNoopWhenUninitialized(t *testing.T) {
	withClearRegistry(t, func() {
		Shutdown() // must not panic
	})
}

func TestTracerLogNotInitialized(t *testing.T) {
	withClearRegistry(t, func() {
		tr, err := NewTracer("")
		if err != nil {
			t.Fatalf("NewTracer: %v", err)
		}
		if err := tr.Log("hi", nil); !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("err = %v, want ErrNotInitialized", err)
		}
	})
}

// TestInitializeLiveLifecycle exercises the full Registry lifecycle
// (spec.md §8 scenario S6: double init) against a real database. It is
// skipped unless DATABASE_URL is set (spec.md §6).
func TestInitializeLiveLifecycle(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	withClearRegistry(t, func() {
		dbname, err := Initialize(dsn, 4, "")
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		if dbname == "" {
			t.Fatal("expected non-empty effective db name")
		}

		if _, err := Initialize(dsn, 4, ""); !errors.Is(err, ErrAlreadyInitialized) {
			t.Fatalf("second Initialize err = %v, want ErrAlreadyInitialized", err)
		}

		tr, err := NewTracer("")
		if err != nil {
			t.Fatalf("NewTracer: %v", err)
		}
		if err := tr.Log("live test", nil); err != nil {
			t.Fatalf("Log: %v", err)
		}

		Flush()
		Shutdown()

		reg.mu.Lock()
		reg.handle = nil
		reg.mu.Unlock()
	})
}
