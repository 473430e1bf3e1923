// Package apperr defines the operational error taxonomy shared by services
// and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operational error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
)

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindRateLimited:
		return "RateLimitError"
	default:
		return "InternalError"
	}
}

// Error is an expected failure with a stable client-facing code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Details is serialised into the "errors" field of the response.
	Details any
	// Err is the underlying cause. It is logged, never sent to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s(%s): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// WithDetails returns a copy carrying per-field details.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// Wrap returns a copy recording the underlying cause.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

func newError(kind Kind, message, code string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(message, code string) *Error {
	return newError(KindValidation, message, code)
}

func Authentication(message, code string) *Error {
	return newError(KindAuthentication, message, code)
}

func Authorization(message, code string) *Error {
	return newError(KindAuthorization, message, code)
}

func NotFound(message, code string) *Error {
	return newError(KindNotFound, message, code)
}

func Conflict(message, code string) *Error {
	return newError(KindConflict, message, code)
}

func RateLimited(message, code string) *Error {
	return newError(KindRateLimited, message, code)
}

// Internal records a collaborator failure not caused by the caller.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: cause}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	target, ok := As(err)
	return ok && target.Code == code
}
