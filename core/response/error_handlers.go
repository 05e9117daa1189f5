package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/fresco/core/handler"
)

// statusCode is implemented by errors that carry an HTTP status.
type statusCode interface {
	StatusCode() int
}

// StatusOf returns the HTTP status of err: the StatusCode of the first error in
// its chain that has one, otherwise 500.
func StatusOf(err error) int {
	var sc statusCode
	if errors.As(err, &sc) {
		if s := sc.StatusCode(); s >= 400 && s < 600 {
			return s
		}
	}
	return http.StatusInternalServerError
}

// AsHTTPError converts any error to an HTTPError. The status is the one
// StatusOf reports; an HTTPError in the chain is returned as is when its status
// agrees. Otherwise the predefined error for the status is used with err
// attached as the cause.
func AsHTTPError(err error) HTTPError {
	status := StatusOf(err)

	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == status {
		return httpErr
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = newHTTPError(status)
	}
	return base.WithError(err)
}

// ErrorText renders err as a plain-text error response.
func ErrorText(err error) handler.Response {
	httpErr := AsHTTPError(err)
	return StringWithStatus(httpErr.Message, httpErr.Status)
}

// ErrorJSON renders err as a JSON error response. The cause of an error that
// is not an HTTPError is only exposed for client errors.
func ErrorJSON(err error) handler.Response {
	httpErr := AsHTTPError(err)
	var explicit HTTPError
	if !errors.As(err, &explicit) && httpErr.Status >= http.StatusInternalServerError {
		httpErr.Details = nil
	}
	return JSONWithStatus(httpErr, httpErr.Status)
}

// ErrorFor picks ErrorJSON for clients that accept JSON and ErrorText otherwise.
func ErrorFor(r *http.Request, err error) handler.Response {
	if strings.Contains(r.Header.Get("Accept"), "json") {
		return ErrorJSON(err)
	}
	return ErrorText(err)
}
