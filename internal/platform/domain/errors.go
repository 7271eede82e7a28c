package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared across aggregates. Services and handlers
// match on these with errors.Is to decide HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// DomainError wraps a sentinel kind with a human-readable message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports that an entity could not be located.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewConflictError reports a write conflict (optimistic lock or unique violation).
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewInvalidStateError reports an illegal aggregate state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewValidationError reports invalid caller input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewUnauthorizedError reports a missing or insufficient identity.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Err: ErrUnauthorized, Message: message}
}
