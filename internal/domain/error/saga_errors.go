package error

import "errors"

// Deletion saga errors.
var (
	// ErrSagaNotFound is returned when a saga record does not exist.
	ErrSagaNotFound = errors.New("deletion saga not found")

	// ErrInvalidSagaTransition is returned on an illegal state transition.
	ErrInvalidSagaTransition = errors.New("invalid saga state transition")
)
