// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidMode is returned when a session mode is not one of study, test or teach.
	ErrInvalidMode = errors.New("invalid session mode")

	// ErrInvalidConversationStatus is returned when a conversation status is not valid.
	ErrInvalidConversationStatus = errors.New("invalid conversation status")

	// ErrInvalidRole is returned when a turn role is not valid.
	ErrInvalidRole = errors.New("invalid turn role")

	// ErrUserIDEmpty is returned when an entity is missing its owning user.
	ErrUserIDEmpty = errors.New("user ID cannot be empty")
)
