package domain

import "errors"

// Error categories surfaced to the API layer. Data-shape problems never
// reach here; they degrade to dropped rows inside the normalizer.
var (
	// ErrInvalidParams marks a report request with out-of-range or unknown
	// parameters. Maps to 400.
	ErrInvalidParams = errors.New("invalid report parameters")

	// ErrStoreUnavailable marks an upstream table read failure. The report
	// render halts; the caller may retry by re-rendering. Maps to 502.
	ErrStoreUnavailable = errors.New("upstream store unavailable")
)
