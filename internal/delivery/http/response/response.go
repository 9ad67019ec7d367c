// Package response defines the JSON envelope every endpoint returns.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response wraps both success and failure payloads. Success carries Data;
// failure carries Error. Code mirrors the HTTP status so clients reading
// the body alone see the same outcome.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is the machine-readable failure detail. Retryable marks
// transient store or dependency failures a client may safely retry.
type ErrorInfo struct {
	Code      string `json:"code"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Success renders a successful response.
func Success(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
	})
}

// Error renders a failure response.
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	return fail(c, statusCode, &ErrorInfo{Code: errorCode, Details: details}, message)
}

// RetryableError renders a transient failure. The body is flagged
// retryable and Retry-After tells well-behaved clients to back off
// before trying again.
func RetryableError(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	c.Response().Header().Set("Retry-After", "1")

	return fail(c, statusCode, &ErrorInfo{Code: errorCode, Details: details, Retryable: true}, message)
}

// BindingError renders a request the server could not decode.
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}

func fail(c echo.Context, statusCode int, info *ErrorInfo, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, Response{
		Success: false,
		Code:    statusCode,
		Message: message,
		Error:   info,
	})
}
