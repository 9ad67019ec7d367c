package errors

import (
	"net/http"

	"gatehouse/internal/errors"
)

// AppError defines the interface for application-specific errors.
// Handlers never map statuses themselves; the HTTP error middleware
// translates any AppError found in the chain.
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
	Retryable() bool   // Whether the caller may retry the same request
}

// BaseError is a basic error structure that implements the AppError interface.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	retryable bool
}

// NewBaseError creates a new base error.
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// NewRetryableError creates a base error the caller is allowed to retry,
// such as a store timeout.
func NewRetryableError(httpCode int, errorCode, message string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		retryable: true,
	}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code.
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code.
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message.
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information.
func (e *BaseError) Details() string {
	return e.details
}

// Retryable reports whether the caller may retry the same request.
func (e *BaseError) Retryable() bool {
	return e.retryable
}

// Is matches by business error code, so detail-carrying copies from
// WithDetails still compare equal to their sentinel.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == other.errorCode
}

// WithDetails adds detailed error information.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
		retryable: e.retryable,
	}
}

// Predefined error types
var (
	// ErrInvalidCredentials covers unknown username, wrong password and
	// inactive accounts alike. The message must stay identical for all
	// three so login failures do not reveal whether a user exists.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid username or password",
		"",
	)

	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"invalid refresh token",
		"",
	)

	ErrRefreshTokenExpired = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_EXPIRED",
		"refresh token expired, please login again",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"username or email already in use",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"user not found",
		"",
	)

	ErrRoleNotFound = NewBaseError(
		http.StatusNotFound,
		"ROLE_NOT_FOUND",
		"role not found",
		"",
	)

	ErrRoleAlreadyExists = NewBaseError(
		http.StatusConflict,
		"ROLE_ALREADY_EXISTS",
		"role already exists",
		"",
	)

	// ErrSystemRoleImmutable rejects any delete attempt on a role flagged
	// system-defined, regardless of who asks.
	ErrSystemRoleImmutable = NewBaseError(
		http.StatusForbidden,
		"SYSTEM_ROLE_IMMUTABLE",
		"system-defined roles cannot be deleted",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"authentication required",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"resource conflict",
		"",
	)

	// ErrTooManyAttempts throttles repeated login failures from one client.
	ErrTooManyAttempts = NewRetryableError(
		http.StatusTooManyRequests,
		"TOO_MANY_ATTEMPTS",
		"too many login attempts, try again later",
	)

	// ErrStoreUnavailable signals a timed-out or unreachable backing
	// store. Distinct from business failures; safe to retry.
	ErrStoreUnavailable = NewRetryableError(
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
		"backing store unavailable, try again later",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface.
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error.
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface.
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code.
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code.
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message.
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information.
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// Retryable reports whether the caller may retry the same request.
func (e *DatabaseExecuteError) Retryable() bool {
	return false
}
