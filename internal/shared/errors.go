package shared

import "errors"

// Error taxonomy shared across domain packages. Services wrap these with
// fmt.Errorf("...: %w", err) so callers can branch with errors.Is while the
// HTTP layer maps them to status codes.
var (
	// ErrValidation indicates rejected input (empty cart, bad quantity, ...).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a missing product, customer, invoice or user.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate identity or a row that vanished
	// mid-transaction.
	ErrConflict = errors.New("conflict")
)
