package authz

import (
	"errors"
	"fmt"
	"net/http"
)

// Authorization error codes.
const (
	ErrCodeNotFound       = "authz.not_found"       // Identifier resolves to no dataset
	ErrCodeForbidden      = "authz.forbidden"       // Principal lacks every required tier
	ErrCodeFilterConflict = "authz.filter_conflict" // Both query and header filters supplied
	ErrCodeBadFilter      = "authz.bad_filter"      // Malformed filter payload
	ErrCodeUnknownAction  = "authz.unknown_action"  // Action outside the closed taxonomy (programming error)
	ErrCodeUnavailable    = "authz.unavailable"     // Dataset fetch failed
)

// httpStatusMap maps error codes to HTTP status codes.
var httpStatusMap = map[string]int{
	ErrCodeNotFound:       http.StatusNotFound,            // 404
	ErrCodeForbidden:      http.StatusForbidden,           // 403
	ErrCodeFilterConflict: http.StatusBadRequest,          // 400
	ErrCodeBadFilter:      http.StatusBadRequest,          // 400
	ErrCodeUnknownAction:  http.StatusInternalServerError, // 500, never masked as 403
	ErrCodeUnavailable:    http.StatusServiceUnavailable,  // 503
}

// AuthzError represents an authorization error with a structured code. The
// engine performs no recovery or retry: every error propagates to the caller
// unchanged.
type AuthzError struct {
	Code    string // One of the ErrCode* constants
	Message string // Human-readable error description
	Status  int    // HTTP status code
	cause   error  // Underlying error, if any
}

// Error implements the error interface.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *AuthzError) HTTPStatus() int {
	return e.Status
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause.
func (e *AuthzError) Unwrap() error {
	return e.cause
}

func newError(code, message string) *AuthzError {
	return &AuthzError{
		Code:    code,
		Message: message,
		Status:  httpStatusMap[code],
	}
}

// ErrNotFound creates an error for a pid that resolves to no dataset. The
// message does not reveal whether the dataset exists but is invisible.
func ErrNotFound(pid string) *AuthzError {
	return newError(ErrCodeNotFound, fmt.Sprintf("dataset: %s not found", pid))
}

// ErrForbidden creates an error for a denied instance check. The message is
// uniform regardless of which tier was closest to matching.
func ErrForbidden() *AuthzError {
	return newError(ErrCodeForbidden, "unauthorized access")
}

// ErrFilterConflict creates an error for ambiguous filter sources.
func ErrFilterConflict() *AuthzError {
	return newError(ErrCodeFilterConflict,
		"using two different types (query and headers) of filters is not supported and can result in inconsistencies")
}

// ErrBadFilter creates an error for a malformed filter payload.
func ErrBadFilter(detail string) *AuthzError {
	return newError(ErrCodeBadFilter, detail)
}

// ErrUnknownOperation creates an error for an operation outside the closed
// taxonomy. This is a programming error and is never reported as Forbidden.
func ErrUnknownOperation(op string) *AuthzError {
	return newError(ErrCodeUnknownAction, fmt.Sprintf("unknown operation %q", op))
}

// ErrUnavailable creates an error for a failed dataset fetch.
func ErrUnavailable(cause error) *AuthzError {
	e := newError(ErrCodeUnavailable, "dataset lookup failed")
	e.cause = cause
	return e
}

// ErrorCode extracts the authz error code from an error. Returns the empty
// string if the error is not an AuthzError.
func ErrorCode(err error) string {
	var authzErr *AuthzError
	if errors.As(err, &authzErr) {
		return authzErr.Code
	}
	return ""
}

// IsAuthzError reports whether the error is or wraps an AuthzError.
func IsAuthzError(err error) bool {
	var authzErr *AuthzError
	return errors.As(err, &authzErr)
}
