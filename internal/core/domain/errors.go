package domain

import (
	"errors"
	"fmt"
)

// Conflict fields reported by registration.
const (
	FieldEmail = "email"
	FieldName  = "name"
)

var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password so that login failures never reveal which identifiers exist.
	ErrInvalidCredentials = errors.New("invalid email/username or password")

	// ErrEmailNotVerified is returned for a known account whose email has
	// not been confirmed yet. Deliberately distinct from ErrInvalidCredentials.
	ErrEmailNotVerified = errors.New("email not verified")

	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput rejects registrations with missing or blank fields
	// before any store or hashing work happens.
	ErrInvalidInput = errors.New("invalid input")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrMailDispatch     = errors.New("mail dispatch failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ConflictError reports a registration uniqueness violation and names the
// offending field. When both fields collide, the email conflict wins.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == FieldName {
		return "Username already in use"
	}
	return "Email already in use"
}

// NewConflict builds a ConflictError for the given field.
func NewConflict(field string) *ConflictError {
	return &ConflictError{Field: field}
}

// IsConflict reports whether err is a uniqueness conflict and, if so, which field.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// WrapStore tags a persistence failure with ErrStoreUnavailable so the API
// layer can map it to an opaque 5xx without inspecting driver errors.
func WrapStore(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
