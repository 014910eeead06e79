package services

import (
	"errors"
	"strings"
)

var (
	// ErrMissingFields is returned when a required field is absent.
	ErrMissingFields = errors.New("missing required fields")

	// ErrCredentialsRequired is returned by Login when username or password is empty.
	ErrCredentialsRequired = errors.New("username and password are required")

	// ErrInvalidCredentials covers both unknown users and wrong passwords,
	// so callers cannot tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("username or email already exists")

	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError carries the human readable reasons a request was rejected.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError wraps one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
