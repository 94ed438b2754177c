package gotrace

import (
	"github.com/google/uuid"

	"github.com/shortontech/gotrace/internal/ingest"
)

// Type tags the three record kinds the pipeline persists.
type Type = ingest.Type

const (
	// TypeLog marks a point-in-time event with no duration.
	TypeLog = ingest.TypeLog
	// TypeSpanStart marks entry into a span.
	TypeSpanStart = ingest.TypeSpanStart
	// TypeSpanEnd marks exit from a span.
	TypeSpanEnd = ingest.TypeSpanEnd
)

// NilUUID is the all-zero UUID used as the default parent when a tracer has
// no initial parent and no span is open.
var NilUUID = ingest.NilUUID

// Record is the unit of persistence: one row in the records table.
//
// ID is assigned by the store (BIGSERIAL) and is zero for records that have
// not been persisted yet.
type Record = ingest.Record

func newSpanID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}
