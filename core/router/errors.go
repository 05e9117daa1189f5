package router

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNilResponse      = errors.New("nil response")
)

// statusError attaches an HTTP status to a sentinel.
type statusError struct {
	err    error
	status int
}

func withStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.status }

var (
	errNotFound         = withStatus(ErrNotFound, http.StatusNotFound)
	errMethodNotAllowed = withStatus(ErrMethodNotAllowed, http.StatusMethodNotAllowed)
)

// PanicError lets error pages and reporters detect recovered panics.
// Any panic raised by middleware, a handler, a layout or a response is
// recovered by the dispatcher and surfaced as a PanicError.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to reach an error passed to panic.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
