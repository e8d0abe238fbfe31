package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the database layer
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
//   - ErrAlreadyUsed: a unique value (such as an email) is already taken
//   - ErrUnavailable: backing resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
