package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed API error with HTTP awareness. Status carries the
// upstream HTTP status code; transport failures that never produced a
// response use Status 0.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrTimeout      = New("TIMEOUT", 0, "request timed out")
	ErrNetwork      = New("NETWORK_ERROR", 0, "network request failed")
	ErrDecode       = New("DECODE_ERROR", 0, "failed to decode response")
	ErrCacheMiss    = New("CACHE_MISS", 0, "cache miss")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FallbackMessage is used whenever an error response body cannot be parsed.
const FallbackMessage = "request failed"

// envelope mirrors the backend error body {error, message}.
type envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FromResponse normalises a non-2xx HTTP response into an *Error. The
// backend-provided message wins when present; an unparseable body falls back
// to FallbackMessage instead of failing.
func FromResponse(status int, body []byte) *Error {
	env := envelope{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &env)
	}

	message := env.Message
	if message == "" {
		message = env.Error
	}
	if message == "" {
		message = FallbackMessage
	}

	code := env.Error
	if code == "" {
		code = http.StatusText(status)
	}

	return &Error{Code: code, Status: status, Message: message}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, err.Error())
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsTimeout reports whether the error represents a timed-out request.
func IsTimeout(err error) bool {
	e := FromError(err)
	return e != nil && e.Code == ErrTimeout.Code
}

// IsClientError reports whether the error carries a 4xx HTTP status.
func IsClientError(err error) bool {
	e := FromError(err)
	return e != nil && e.Status >= 400 && e.Status < 500
}
