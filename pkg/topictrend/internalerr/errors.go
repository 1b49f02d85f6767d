package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrPersist marks a store write that failed after the in-memory update succeeded.
	ErrPersist = errors.New("topic store not persisted")
)
