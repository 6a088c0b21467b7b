// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

// Package apperr defines the error taxonomy exposed to API clients.
//
// Every error that crosses the HTTP boundary is one of four kinds. Each kind
// carries a human-readable message, a suggested action, and the HTTP status
// code the API responds with. Anything that is not an *Error is converted to a
// generic Service error by From before it reaches a client.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind identifies one variant of the error taxonomy.
type Kind int

// Error kinds.
const (
	KindUnauthorized Kind = iota + 1
	KindNotFound
	KindValidation
	KindService
)

// String returns the serialized name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindNotFound:
		return "NotFoundError"
	case KindValidation:
		return "ValidationError"
	case KindService:
		return "ServiceError"
	default:
		return "UnknownError"
	}
}

// StatusCode returns the default HTTP status for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// Default messages and actions per kind.
const (
	DefaultUnauthorizedMessage = "User is not authenticated."
	DefaultUnauthorizedAction  = "Log in again to continue."
	DefaultNotFoundMessage     = "This resource could not be found."
	DefaultNotFoundAction      = "Check that the query parameters are correct."
	DefaultValidationMessage   = "A validation error occurred."
	DefaultValidationAction    = "Adjust the submitted data and try again."
	DefaultServiceMessage      = "The service is currently unavailable."
	DefaultServiceAction       = "Check whether the service is available and try again."
)

// Error is a client-facing error. Cause is kept for logs and never serialized.
type Error struct {
	Kind       Kind
	Message    string
	Action     string
	StatusCode int
	cause      error
}

// Error returns the message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Body is the serialized form of an Error.
type Body struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Action     string `json:"action"`
	StatusCode int    `json:"status_code"`
}

// Body returns the serializable representation of the error.
func (e *Error) Body() Body {
	return Body{
		Name:       e.Kind.String(),
		Message:    e.Message,
		Action:     e.Action,
		StatusCode: e.StatusCode,
	}
}

// MarshalJSON encodes the error as {name, message, action, status_code}.
func (e *Error) MarshalJSON() ([]byte, error) {
	//nolint:wrapcheck // encoding a plain struct of strings and ints
	return json.Marshal(e.Body())
}

func newError(kind Kind, message, action, defaultMessage, defaultAction string, cause error) *Error {
	if message == "" {
		message = defaultMessage
	}
	if action == "" {
		action = defaultAction
	}
	return &Error{
		Kind:       kind,
		Message:    message,
		Action:     action,
		StatusCode: kind.StatusCode(),
		cause:      cause,
	}
}

// Unauthorized reports missing or invalid credentials or sessions.
// Empty message or action fall back to the defaults.
func Unauthorized(message, action string) *Error {
	return newError(KindUnauthorized, message, action, DefaultUnauthorizedMessage, DefaultUnauthorizedAction, nil)
}

// NotFound reports that a requested resource does not exist.
func NotFound(message, action string) *Error {
	return newError(KindNotFound, message, action, DefaultNotFoundMessage, DefaultNotFoundAction, nil)
}

// Validation reports invalid or conflicting input.
func Validation(message, action string) *Error {
	return newError(KindValidation, message, action, DefaultValidationMessage, DefaultValidationAction, nil)
}

// Service reports an infrastructure failure. The cause is retained for
// logging and errors.Is/As but is never shown to clients.
func Service(cause error) *Error {
	return newError(KindService, "", "", DefaultServiceMessage, DefaultServiceAction, cause)
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// From converts err into a client-facing error. Taxonomy errors pass through
// unchanged; anything else becomes a generic Service error wrapping err.
// From returns nil for a nil error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return Service(err)
}
