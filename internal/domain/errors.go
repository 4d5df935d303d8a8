package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists means the resource already exists.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidInput means the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable means a required upstream service is unreachable.
	ErrUnavailable = errors.New("service unavailable")
	// ErrInternal wraps unexpected internal failures.
	ErrInternal = errors.New("internal error")
)

// DomainError carries a stable code and a user-safe message alongside
// the wrapped cause.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface (for logs and internal wrapping).
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the user-facing message without internal detail.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError builds a not-found error for a named resource.
func NewNotFoundError(resourceType, id string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError builds a validation error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewUnavailableError builds an upstream-unavailable error.
func NewUnavailableError(service string, err error) error {
	return &DomainError{
		Code:    "UNAVAILABLE",
		Message: fmt.Sprintf("%s is currently unavailable", service),
		Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
	}
}

// NewInternalError wraps an unexpected failure without leaking detail
// to the caller.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnavailable reports whether err is an upstream-unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsInternalError reports whether err is an internal error.
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}
