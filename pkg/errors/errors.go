// Package errors provides structured error handling for the application
// Following enterprise patterns for error management and observability
package errors

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Common error codes following RESTful API conventions
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Upstream LLM failure kinds; these never surface to API callers,
	// they steer the engine onto the fallback path
	CodeUpstreamAuth        ErrorCode = "UPSTREAM_AUTH"
	CodeUpstreamForbidden   ErrorCode = "UPSTREAM_FORBIDDEN"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamRateLimited ErrorCode = "UPSTREAM_RATE_LIMITED"
	CodeUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"

	// Core pipeline failure kinds
	CodeRepairFailed           ErrorCode = "REPAIR_FAILED"
	CodeAggregatorInconsistent ErrorCode = "AGGREGATOR_INCONSISTENT"
	CodePlanNotFound           ErrorCode = "PLAN_NOT_FOUND"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodePlanNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests, CodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the failure is transient from the caller's
// point of view. Auth failures are terminal until configuration changes.
func (e *AppError) IsRetryable() bool {
	switch e.Code {
	case CodeUpstreamUnavailable, CodeUpstreamRateLimited, CodeUpstreamTimeout, CodeServiceUnavailable:
		return true
	default:
		return false
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// Predefined error constructors for common scenarios

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", strings.Title(resource))
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// Upstream LLM error constructors

// NewUpstreamAuthError indicates the provider rejected our credentials
func NewUpstreamAuthError(provider string) *AppError {
	return NewAppError(
		CodeUpstreamAuth,
		"Upstream authentication failed",
		fmt.Sprintf("%s rejected the configured API key", provider),
	).WithMetadata("provider", provider)
}

// NewUpstreamForbiddenError indicates access is blocked, typically by region
func NewUpstreamForbiddenError(provider string) *AppError {
	return NewAppError(
		CodeUpstreamForbidden,
		"Upstream access forbidden",
		fmt.Sprintf("%s refused the request; likely a region block", provider),
	).WithMetadata("provider", provider)
}

// NewUpstreamUnavailableError indicates a transient upstream failure
func NewUpstreamUnavailableError(provider string, cause error) *AppError {
	return NewAppError(
		CodeUpstreamUnavailable,
		"Upstream service unavailable",
		fmt.Sprintf("Failed to communicate with %s", provider),
	).WithCause(cause).WithMetadata("provider", provider)
}

// NewUpstreamRateLimitedError indicates the provider throttled us
func NewUpstreamRateLimitedError(provider string) *AppError {
	return NewAppError(
		CodeUpstreamRateLimited,
		"Upstream rate limited",
		fmt.Sprintf("%s returned 429", provider),
	).WithMetadata("provider", provider)
}

// NewUpstreamTimeoutError indicates the request deadline expired
func NewUpstreamTimeoutError(provider string, cause error) *AppError {
	return NewAppError(
		CodeUpstreamTimeout,
		"Upstream request timed out",
		fmt.Sprintf("%s did not respond in time", provider),
	).WithCause(cause).WithMetadata("provider", provider)
}

// Core pipeline error constructors

// NewRepairFailedError indicates the LLM responded but no dish was recoverable
func NewRepairFailedError(rawLen int) *AppError {
	return NewAppError(
		CodeRepairFailed,
		"JSON repair yielded zero dishes",
		"",
	).WithMetadata("raw_length", rawLen)
}

// NewPlanNotFoundError creates a meal plan not found error
func NewPlanNotFoundError(userID string) *AppError {
	return NewAppError(
		CodePlanNotFound,
		"Meal plan not found",
		fmt.Sprintf("No meal plan stored for user %s", userID),
	).WithMetadata("user_id", userID)
}

// GetCode extracts the error code from any error, defaulting to internal
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
