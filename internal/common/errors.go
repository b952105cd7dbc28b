// Package common defines shared constants and sentinel errors used across
// the server, gateway and repository layers. Callers should use errors.Is
// (or errors.As for StoreError) to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrSessionRevoked      = errors.New("session revoked")
)

// DomainError attaches a human-readable message to one of the sentinel
// errors above. errors.Is matches the sentinel, Error returns the message.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

// NewValidationError reports malformed or missing input.
func NewValidationError(msg string) error {
	return &DomainError{Kind: ErrorValidation, Message: msg}
}

// NewNotFoundError reports a referenced entity that does not exist.
func NewNotFoundError(msg string) error {
	return &DomainError{Kind: ErrorNotFound, Message: msg}
}

// NewConflictError reports a uniqueness violation.
func NewConflictError(msg string) error {
	return &DomainError{Kind: ErrorAlreadyExists, Message: msg}
}

// NewAuthError reports a credential mismatch. Kind defaults to ErrorUnauthorized.
func NewAuthError(kind error, msg string) error {
	if kind == nil {
		kind = ErrorUnauthorized
	}
	return &DomainError{Kind: kind, Message: msg}
}

// StoreError wraps a failure of the underlying persistence layer.
// Its message is the store's own message, prefixed by the operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError unless it already is one
// or is one of the sentinel errors above.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	var de *DomainError
	if errors.As(err, &de) || errors.Is(err, ErrorNotFound) || errors.Is(err, ErrorAlreadyExists) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
