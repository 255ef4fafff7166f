package apperror

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies an AppError so callers can branch without comparing status codes
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindPersistence     Kind = "persistence"
	KindAuth            Kind = "auth"
	KindTimeout         Kind = "timeout"
	KindBadRequest      Kind = "bad_request"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int      `json:"-"`
	Kind    Kind     `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`

	cause error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying storage or transport error
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches AppErrors by kind so errors.Is(err, apperror.ErrNotFound) works for any not-found error
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Common errors
var (
	ErrNotFound        = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized    = &AppError{Code: http.StatusUnauthorized, Kind: KindAuth, Message: "Unauthorized"}
	ErrBadRequest      = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrValidation      = &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: "Validation failed"}
	ErrPersistence     = &AppError{Code: http.StatusInternalServerError, Kind: KindPersistence, Message: "Internal server error"}
	ErrInternalServer  = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrTimeout         = &AppError{Code: http.StatusGatewayTimeout, Kind: KindTimeout, Message: "Request timed out"}
	ErrTooManyRequests = &AppError{Code: http.StatusTooManyRequests, Kind: KindTooManyRequests, Message: "Rate limit exceeded. Please try again later."}
	ErrInvalidToken    = &AppError{Code: http.StatusUnauthorized, Kind: KindAuth, Message: "Invalid or expired token"}
)

// NewValidationError creates a validation error carrying every offending field or item
func NewValidationError(details []string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: "Validation failed",
		Details: details,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewPersistenceError wraps a storage failure. The message stays generic; the cause is only logged.
func NewPersistenceError(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindPersistence,
		Message: message,
		cause:   cause,
	}
}

// NewAuthError creates an unauthorized error with a custom message
func NewAuthError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Kind:    KindAuth,
		Message: message,
	}
}

// NewTimeoutError wraps a deadline overrun
func NewTimeoutError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusGatewayTimeout,
		Kind:    KindTimeout,
		Message: ErrTimeout.Message,
		cause:   cause,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: ErrInternalServer.Message,
		cause:   err,
	}
}
