package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by TutorService. Callers check them with
// errors.Is; the API layer maps each to a status code.
var (
	// ErrSessionNotFound means no live session has the given ID. Sessions
	// leave the registry when ended or after the idle TTL.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotOwned means the session belongs to another learner.
	ErrSessionNotOwned = errors.New("session is owned by another user")

	// ErrEmptyDeck means no cards were supplied and the document has none.
	ErrEmptyDeck = errors.New("deck has no cards")

	// ErrInvalidRequest means the request failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// ServiceError wraps a failure with the operation that produced it.
type ServiceError struct {
	// Operation is the failing operation, e.g. "start_session".
	Operation string
	// Message is a human-readable description of the failure.
	Message string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

const (
	opStartSession = "start_session"
	opProcessTurn  = "process_turn"
	opEndSession   = "end_session"
	opGetProgress  = "get_progress"
	opBuildContext = "build_context"
)
