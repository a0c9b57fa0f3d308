package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the persistence and auth layers. The HTTP
// boundary maps these to status codes in one place.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid token, please log in again")
	ErrTokenExpired       = errors.New("session expired, please log in again")

	// ErrProviderTimeout is returned when an AI backend does not answer within
	// the bounded wait imposed on the outbound call.
	ErrProviderTimeout = errors.New("the AI provider took too long to respond")
)

// ValidationError marks malformed or missing request input (HTTP 400).
type ValidationError struct {
	msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string { return e.msg }

// ProviderError carries an upstream generation failure. It is surfaced to the
// user as an inline assistant message, never as an HTTP error.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderUnavailable reports a missing or placeholder API credential.
func ProviderUnavailable(provider, msg string) *ProviderError {
	return &ProviderError{Provider: provider, Err: errors.New(msg)}
}

// NewProviderError wraps an upstream failure, keeping the upstream message.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: fmt.Errorf("%s request failed: %w", provider, err)}
}
