package db

import "errors"

// Domain-level database error sentinels.
var (
	// Outcome errors
	ErrOutcomeNotFound = errors.New("outcome not found")
	ErrInvalidOutcome  = errors.New("outcome requires a review id and a status")
)
