package ingest

import (
	"context"
	"fmt"

	"github.com/shortontech/gotrace/internal/diag"
)

const insertSQL = `INSERT INTO records (span_id, parent_id, type, timestamp, message, attr)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)`

// PoolInserter is the production inserter: it acquires one connection
// from Pool per flush and inserts each buffered record in its own
// statement (spec.md §4.C). Rows are inserted one statement at a time,
// not pipelined into a single implicit transaction, precisely so a
// malformed row aborts only itself: PostgreSQL's extended query
// pipelining keeps a whole Sync-delimited group in one implicit
// transaction, which would otherwise poison every row queued after the
// first failure.
type PoolInserter struct {
	Pool *Pool
}

func (p *PoolInserter) InsertBatch(ctx context.Context, records []Record) (dropped int, err error) {
	if len(records) == 0 {
		return 0, nil
	}

	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	for _, r := range records {
		attr, malformed := sanitizeAttr(r.Attr)
		if malformed {
			diag.Printf("gotrace: attr for span %s is not valid JSON; persisting with NULL attr", r.SpanID)
		}
		var attrParam any
		if attr != nil {
			attrParam = string(attr)
		}

		if _, execErr := conn.Exec(ctx, insertSQL, r.SpanID, r.ParentID, int(r.Type), r.Timestamp, r.Message, attrParam); execErr != nil {
			dropped++
			diag.Printf("gotrace: dropping record (span %s): %v", r.SpanID, execErr)
		}
	}

	return dropped, nil
}
