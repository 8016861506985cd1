package services

import "errors"

// Error kinds surfaced to handlers. Repositories contribute their own
// not-found sentinel; these cover authorization and input validation.
var (
	// ErrForbidden is returned when a non-admin caller attempts a mutating
	// operation.
	ErrForbidden = errors.New("only admin can modify products")

	// ErrValidation is wrapped around descriptive messages for malformed or
	// empty input fields.
	ErrValidation = errors.New("invalid input")
)
