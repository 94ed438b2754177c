package ingest

import "encoding/json"

// sanitizeAttr validates an opaque attr payload before it is bound as a
// JSONB parameter. An empty payload is a valid "no attributes" case.
// Malformed non-empty JSON is non-fatal per spec.md §7 AttrParseFailed:
// the caller nulls the attribute and logs a diagnostic; the record
// itself is still persisted.
func sanitizeAttr(raw []byte) (clean []byte, malformed bool) {
	if len(raw) == 0 {
		return nil, false
	}
	if !json.Valid(raw) {
		return nil, true
	}
	return raw, false
}
