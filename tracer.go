package gotrace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shortontech/gotrace/internal/glocal"
)

// spanStack is the ordered sequence of currently-open span ids for one
// goroutine, outermost first. It is owned exclusively by that goroutine;
// callers never share one across goroutines.
type spanStack struct {
	ids []uuid.UUID
}

func (s *spanStack) top() (uuid.UUID, bool) {
	if len(s.ids) == 0 {
		return uuid.UUID{}, false
	}
	return s.ids[len(s.ids)-1], true
}

func (s *spanStack) push(id uuid.UUID) {
	s.ids = append(s.ids, id)
}

// pop removes and returns the top id. ok is false on an empty stack.
func (s *spanStack) pop() (uuid.UUID, bool) {
	if len(s.ids) == 0 {
		return uuid.UUID{}, false
	}
	id := s.ids[len(s.ids)-1]
	s.ids = s.ids[:len(s.ids)-1]
	return id, true
}

// Tracer is a per-subsystem facade over the span-context state machine.
// A Tracer's stacks map is safe for concurrent use by multiple
// goroutines; each goroutine only ever touches its own entry.
type Tracer struct {
	initialParent uuid.UUID
	stacks        sync.Map // goroutine id (int64) -> *spanStack
}

// NewTracer constructs a Tracer with the given initial parent id. An
// empty string defaults to the nil UUID. A malformed non-empty id
// returns ErrInvalidUUID.
func NewTracer(parentID string) (*Tracer, error) {
	parent := NilUUID
	if parentID != "" {
		id, err := uuid.Parse(parentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUUID, err)
		}
		parent = id
	}
	return &Tracer{initialParent: parent}, nil
}

func (t *Tracer) stackFor(goid int64) *spanStack {
	if v, ok := t.stacks.Load(goid); ok {
		return v.(*spanStack)
	}
	st := &spanStack{}
	actual, _ := t.stacks.LoadOrStore(goid, st)
	return actual.(*spanStack)
}

// currentParentID resolves the ambient parent: the top of the calling
// goroutine's stack, or the tracer's initial parent if that stack is
// empty.
func (t *Tracer) currentParentID() uuid.UUID {
	goid := glocal.ID()
	if v, ok := t.stacks.Load(goid); ok {
		if id, ok := v.(*spanStack).top(); ok {
			return id
		}
	}
	return t.initialParent
}

// Log emits a point-in-time record attached to the innermost enclosing
// span on the calling goroutine, or the tracer's initial parent if none
// is open. attr is an optional, already-serialized JSON payload.
func (t *Tracer) Log(message string, attr []byte) error {
	r := Record{
		SpanID:    newSpanID(),
		ParentID:  t.currentParentID(),
		Type:      TypeLog,
		Timestamp: time.Now(),
		Message:   message,
		Attr:      attr,
	}
	return emitFunc(r)
}

// Span prepares a new span scope without entering it. The span id is
// generated eagerly so callers may reference it before Enter runs.
func (t *Tracer) Span(message string, attr []byte) *SpanScope {
	return &SpanScope{
		tracer:  t,
		spanID:  newSpanID(),
		message: message,
		attr:    attr,
		state:   spanArmed,
	}
}

type spanState int

const (
	spanArmed spanState = iota
	spanOpen
	spanClosed
)

// SpanScope is the scoped handle for one open span. Its zero value is
// not usable; obtain one from Tracer.Span. Enter and Exit are each
// idempotent: a second call is a no-op, matching spec.md §9's guidance
// to guard double-entry/double-exit rather than leave it undefined.
type SpanScope struct {
	tracer  *Tracer
	spanID  uuid.UUID
	message string
	attr    []byte

	mu       sync.Mutex
	state    spanState
	goid     int64
	parentID uuid.UUID
}

// SpanID returns the identifier this scope will use for both its start
// and end records, available even before Enter.
func (s *SpanScope) SpanID() uuid.UUID {
	return s.spanID
}

// Enter transitions the scope armed -> open: it resolves the current
// parent, emits a span-start record, and pushes this span onto the
// calling goroutine's stack. The goroutine that calls Enter owns the
// scope from here on; Exit must be called from that same goroutine.
func (s *SpanScope) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != spanArmed {
		return
	}
	s.goid = glocal.ID()
	s.parentID = s.tracer.currentParentID()
	s.state = spanOpen

	_ = emitFunc(Record{
		SpanID:    s.spanID,
		ParentID:  s.parentID,
		Type:      TypeSpanStart,
		Timestamp: time.Now(),
		Message:   s.message,
		Attr:      s.attr,
	})

	s.tracer.stackFor(s.goid).push(s.spanID)
}

// Exit transitions the scope open -> closed: it pops the calling
// goroutine's stack and emits a span-end record carrying the same
// parent_id that was resolved at Enter. A stack top that doesn't match
// this scope's span id indicates improperly nested scopes; it is logged
// to the diagnostic sink and the stack is left as popped (spec.md §9
// leaves repair undefined; this implementation does not attempt one).
func (s *SpanScope) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != spanOpen {
		return
	}
	s.state = spanClosed

	if top, ok := s.tracer.stackFor(s.goid).pop(); ok && top != s.spanID {
		logDiagnostic("gotrace: span exit mismatch: expected %s, popped %s", s.spanID, top)
	}

	_ = emitFunc(Record{
		SpanID:    s.spanID,
		ParentID:  s.parentID,
		Type:      TypeSpanEnd,
		Timestamp: time.Now(),
		Message:   s.message,
		Attr:      s.attr,
	})
}

// Close is an alias for Exit, for RAII-style use with defer:
//
//	span := tracer.Span("outer", nil)
//	span.Enter()
//	defer span.Close()
func (s *SpanScope) Close() {
	s.Exit()
}
