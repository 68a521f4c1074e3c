package filemeta

import "errors"

// Sentinel errors for package filemeta.
// Causes are wrapped, so check them with errors.Is().
var (
	// Per-file failures
	ErrPathUnreadable      = errors.New("path unreadable")
	ErrMetadataQuery       = errors.New("metadata query failed")
	ErrChecksumUnavailable = errors.New("checksum unavailable")

	// Batch failures
	ErrNoResults = errors.New("no file produced a result")
)
