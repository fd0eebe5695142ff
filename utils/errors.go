package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError independently of the HTTP status it is
// reported with.
type ErrorKind string

const (
	KindInvalidArgument      ErrorKind = "invalid_argument"
	KindNotFound             ErrorKind = "not_found"
	KindAuthenticationFailed ErrorKind = "authentication_failed"
	KindUnauthorized         ErrorKind = "unauthorized"
	KindForbidden            ErrorKind = "forbidden"
	KindConflict             ErrorKind = "conflict"
	KindUpstream             ErrorKind = "upstream_error"
	KindTransient            ErrorKind = "transient_error"
	KindInternal             ErrorKind = "internal"
)

// AppError represents an application error
type AppError struct {
	Code    int       `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithStatus returns a copy of the error reported with a different HTTP status.
func (e *AppError) WithStatus(code int) *AppError {
	cp := *e
	cp.Code = code
	return &cp
}

// NewAppError creates a new AppError
func NewAppError(code int, kind ErrorKind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// InvalidArgumentError creates a 400 error for malformed or missing input
func InvalidArgumentError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, KindInvalidArgument, message, err)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, message, err)
}

// AuthenticationFailedError is used when a signed payload does not verify.
// It is a client error, not a session problem, so it reports 400.
func AuthenticationFailedError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, KindAuthenticationFailed, message, err)
}

// UnauthorizedError creates a 401 Unauthorized error
func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(http.StatusUnauthorized, KindUnauthorized, message, err)
}

// ForbiddenError creates a 403 Forbidden error
func ForbiddenError(message string, err error) *AppError {
	return NewAppError(http.StatusForbidden, KindForbidden, message, err)
}

// ConflictError creates a 409 Conflict error
func ConflictError(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, KindConflict, message, err)
}

// UpstreamError creates a 500 error for failures of a third-party provider
func UpstreamError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindUpstream, message, err)
}

// TransientError creates a 503 error for retryable storage failures
func TransientError(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, KindTransient, message, err)
}

// InternalError creates a 500 Internal Server Error
func InternalError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, message, err)
}

// GetAppError returns the AppError in err's chain, if any
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err carries an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind == kind
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
