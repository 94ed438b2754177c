package gotrace

import "errors"

// Lifecycle and validation errors surfaced synchronously to callers.
// WriteFailed and AttrParseFailed are deliberately absent here: per
// spec.md §7 they never leave the writer thread, they are logged to the
// diagnostic sink. A WriteFailed record is dropped; an AttrParseFailed
// record is still persisted, with a NULL attr.
var (
	ErrAlreadyInitialized = errors.New("gotrace: registry already initialized")
	ErrNotInitialized     = errors.New("gotrace: registry not initialized")
	ErrInvalidEndpoint    = errors.New("gotrace: invalid endpoint")
	ErrInvalidUUID        = errors.New("gotrace: invalid uuid")
	ErrConnectFailed      = errors.New("gotrace: connect failed")
	ErrProvisionFailed    = errors.New("gotrace: provision failed")
)
