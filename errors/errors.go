package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified SDK error type.
type AppError struct {
	// Kind is the failure family the code belongs to.
	Kind Kind `json:"kind"`
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// StatusCode is the HTTP status that produced the error (0 when no response).
	StatusCode int `json:"status_code,omitempty"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError; kind and retryability follow from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Kind:      KindOfCode(code),
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Data conversion ---

// ToJSON creates an error for parameters that could not be serialized.
func ToJSON(cause error) *AppError {
	return New(ErrCodeToJSON, "Failed to convert params to JSON").WithCause(cause)
}

// FromJSON creates an error for a response body that is not a JSON object.
func FromJSON(cause error) *AppError {
	return New(ErrCodeFromJSON, "Failed to parse JSON from data").WithCause(cause)
}

// FileEncoding creates an error for a file part that could not be read.
func FileEncoding(path string, cause error) *AppError {
	return New(ErrCodeFileEncoding, "Failed to encode file for http request").
		WithCause(cause).
		WithDetail("path", path)
}

// --- Authentication ---

// MissingCredentials creates an error for a token fetch attempted without
// both a client id and a client secret.
func MissingCredentials() *AppError {
	return New(ErrCodeMissingCredentials,
		"Client id and client secret are required to fetch an access token")
}

// CouldNotAuthenticate creates an error for a failed token fetch.
func CouldNotAuthenticate(reason string, cause error) *AppError {
	if reason == "" {
		reason = "Failed to fetch access token"
	}
	return New(ErrCodeCouldNotAuthenticate, reason).WithCause(cause)
}

// TokenExpired creates an error for a request the platform rejected with
// 401 after the SDK gave up refreshing.
func TokenExpired() *AppError {
	e := New(ErrCodeTokenExpired, "Access token expired or was rejected")
	e.StatusCode = http.StatusUnauthorized
	return e
}

// --- Transport ---

// ConnectionFailed creates an error for a network-level failure.
func ConnectionFailed(cause error) *AppError {
	return New(ErrCodeConnectionFailed, "Unable to reach the platform").WithCause(cause)
}

// Timeout creates an error for an exchange that timed out or was canceled.
func Timeout(cause error) *AppError {
	return New(ErrCodeTimeout, "The request took too long").WithCause(cause)
}

// UnexpectedStatus creates an error for a non-2xx, non-401 response.
// Throttling and server errors are marked retryable.
func UnexpectedStatus(statusCode int, body []byte) *AppError {
	e := New(ErrCodeUnexpectedStatus, fmt.Sprintf("HTTP %d", statusCode))
	e.StatusCode = statusCode
	e.Retryable = statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
	if len(body) > 0 {
		e.WithDetail("body", string(body))
	}
	return e
}

// --- Configuration ---

// InvalidConfig creates an error for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, message)
}

// --- Inspection helpers ---

// As converts an error to an AppError if possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}

// HasCode reports whether err's chain holds an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsDataConversion checks if an error is a data conversion error.
func IsDataConversion(err error) bool { return KindOf(err) == KindDataConversion }

// IsAuthentication checks if an error is an authentication error.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Retryable
}
