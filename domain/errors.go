package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error carrying the same code and message, so sentinel
// errors keep matching after being wrapped with extra context.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrTaskForbidden      = NewError(ErrCodeForbidden, "not authorized")
	ErrEmailTaken         = NewError(ErrCodeConflict, "an account already exists with this email")
	ErrMissingFields      = NewError(ErrCodeInvalid, "please fill in all fields")
	ErrInvalidEmail       = NewError(ErrCodeInvalid, "please enter a valid email address")
	ErrPasswordTooLong    = NewError(ErrCodeInvalid, "password must be at most 72 bytes")
	ErrTaskFieldsRequired = NewError(ErrCodeInvalid, "title and description are required")
	ErrInvalidStatus      = NewError(ErrCodeInvalid, "status must be one of: to do, in progress, done")
	ErrInvalidDueDate     = NewError(ErrCodeInvalid, "dueDate must be a YYYY-MM-DD or RFC 3339 date")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrNoToken            = NewError(ErrCodeUnauthorized, "not authorized, no token")
	ErrInvalidToken       = NewError(ErrCodeUnauthorized, "not authorized, invalid token")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "not authorized")
	ErrTooManyAttempts    = NewError(ErrCodeRateLimited, "too many login attempts, try again later")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
