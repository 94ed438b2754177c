// Package ingest is the record ingestion pipeline: Provisioner, Pool and
// Batcher, assembled behind a Handle. It has no knowledge of Tracer or
// SpanScope; those live in the parent gotrace package and call down into
// Handle.Append/Flush/Close.
package ingest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type tags the three record kinds the pipeline persists.
type Type int

const (
	TypeLog Type = iota
	TypeSpanStart
	TypeSpanEnd
)

func (t Type) String() string {
	switch t {
	case TypeLog:
		return "log"
	case TypeSpanStart:
		return "span_start"
	case TypeSpanEnd:
		return "span_end"
	default:
		return "unknown"
	}
}

// NilUUID is the all-zero UUID used as the default parent.
var NilUUID = uuid.UUID{}

// Record is the unit of persistence: one row in the records table.
type Record struct {
	ID        int64
	SpanID    uuid.UUID
	ParentID  uuid.UUID
	Type      Type
	Timestamp time.Time
	Message   string
	Attr      json.RawMessage
}
