package response

import (
	"net/http"
	"strings"
)

// HTTPError is a structured error response. It implements the StatusCode
// interface the dispatcher honours.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError creates a 500 error with a custom message.
func NewHTTPError(message string) HTTPError {
	return ErrInternalServerError.WithMessage(message)
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy of the error with the cause recorded in its details.
// The receiver's details map is never mutated.
func (e HTTPError) WithError(err error) HTTPError {
	if err == nil {
		return e
	}
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

func newHTTPError(status int) HTTPError {
	text := http.StatusText(status)
	code := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
	return HTTPError{Status: status, Code: code, Message: text}
}

// Predefined HTTP errors. Codes are the snake-cased status texts.
var (
	ErrBadRequest            = newHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = newHTTPError(http.StatusUnauthorized)
	ErrForbidden             = newHTTPError(http.StatusForbidden)
	ErrNotFound              = newHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed      = newHTTPError(http.StatusMethodNotAllowed)
	ErrNotAcceptable         = newHTTPError(http.StatusNotAcceptable)
	ErrRequestTimeout        = newHTTPError(http.StatusRequestTimeout)
	ErrConflict              = newHTTPError(http.StatusConflict)
	ErrGone                  = newHTTPError(http.StatusGone)
	ErrPreconditionFailed    = newHTTPError(http.StatusPreconditionFailed)
	ErrRequestEntityTooLarge = newHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnsupportedMediaType  = newHTTPError(http.StatusUnsupportedMediaType)
	ErrUnprocessableEntity   = newHTTPError(http.StatusUnprocessableEntity)
	ErrTooManyRequests       = newHTTPError(http.StatusTooManyRequests)
	ErrInternalServerError   = newHTTPError(http.StatusInternalServerError)
	ErrNotImplemented        = newHTTPError(http.StatusNotImplemented)
	ErrBadGateway            = newHTTPError(http.StatusBadGateway)
	ErrServiceUnavailable    = newHTTPError(http.StatusServiceUnavailable)
	ErrGatewayTimeout        = newHTTPError(http.StatusGatewayTimeout)
)

var httpErrorsByStatus = func() map[int]HTTPError {
	m := make(map[int]HTTPError)
	for _, e := range []HTTPError{
		ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrMethodNotAllowed,
		ErrNotAcceptable, ErrRequestTimeout, ErrConflict, ErrGone, ErrPreconditionFailed,
		ErrRequestEntityTooLarge, ErrUnsupportedMediaType, ErrUnprocessableEntity,
		ErrTooManyRequests, ErrInternalServerError, ErrNotImplemented, ErrBadGateway,
		ErrServiceUnavailable, ErrGatewayTimeout,
	} {
		m[e.Status] = e
	}
	return m
}()
