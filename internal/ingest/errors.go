package ingest

import "errors"

// ErrConnect and ErrProvision distinguish the two ways Open's initial
// I/O can fail, so the parent gotrace package can map them onto its own
// ConnectFailed / ProvisionFailed public errors (spec.md §7).
var (
	ErrConnect   = errors.New("ingest: connect failed")
	ErrProvision = errors.New("ingest: provision failed")
)
