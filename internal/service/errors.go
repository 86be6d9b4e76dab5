package service

import "errors"

// Error taxonomy surfaced to handlers. Services wrap these with fmt.Errorf
// ("...: %w") so handlers can map them to HTTP statuses with errors.Is while
// keeping a user-displayable message.
var (
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState: the entity exists but the operation is not allowed in
	// its current state (no active rules, duplicate payment, locked rental).
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation: the request itself is malformed (out-of-range month,
	// negative amount, bad enum value).
	ErrValidation = errors.New("validation failed")
	// ErrForbidden: the acting user is not permitted to perform the operation.
	ErrForbidden = errors.New("forbidden")
)
