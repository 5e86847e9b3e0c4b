// Package apierror defines the client-facing error type rendered as the
// {statusCode, success, message, errors} envelope.
package apierror

import (
	"errors"
	"net/http"
)

// Error is an error whose status code and message are safe to show to clients.
type Error struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

func (e *Error) Error() string {
	return e.Message
}

// New returns an Error with the given status code and message.
func New(status int, message string, details ...string) *Error {
	if details == nil {
		details = []string{}
	}
	return &Error{StatusCode: status, Message: message, Errors: details}
}

func BadRequest(message string, details ...string) *Error {
	return New(http.StatusBadRequest, message, details...)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Body is the JSON envelope rendered for an error.
type Body struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

// Body returns the envelope of e.
func (e *Error) Body() Body {
	details := e.Errors
	if details == nil {
		details = []string{}
	}
	return Body{
		StatusCode: e.StatusCode,
		Success:    false,
		Message:    e.Message,
		Errors:     details,
	}
}

// From converts any error to an *Error. Errors without a client-safe message
// become a generic 500.
func From(err error) *Error {
	if apiErr, ok := As(err); ok {
		return apiErr
	}
	return Internal(http.StatusText(http.StatusInternalServerError))
}
