// Package report surfaces request errors to operators. The dispatcher reports
// every error it cannot turn into a response through an error page.
package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fresco/core/logger"
)

// Reporter receives errors that reached the built-in error response.
type Reporter interface {
	Report(ctx context.Context, r *http.Request, err error)
}

// Func adapts a function to Reporter.
type Func func(ctx context.Context, r *http.Request, err error)

// Report implements Reporter.
func (f Func) Report(ctx context.Context, r *http.Request, err error) {
	f(ctx, r, err)
}

// Multi fans a report out to several reporters in order.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(ctx context.Context, r *http.Request, err error) {
	for _, rep := range m {
		if rep != nil {
			rep.Report(ctx, r, err)
		}
	}
}

// stackTracer is implemented by recovered panics.
type stackTracer interface {
	Stack() []byte
}

// Slog reports errors as error-level log records.
type Slog struct {
	log *slog.Logger
}

// NewSlog creates a Slog reporter. A nil logger discards reports.
func NewSlog(log *slog.Logger) *Slog {
	if log == nil {
		log = logger.Nop()
	}
	return &Slog{log: log}
}

// Report implements Reporter.
func (s *Slog) Report(ctx context.Context, r *http.Request, err error) {
	if err == nil {
		return
	}

	attrs := []any{logger.Component("report"), logger.Error(err)}
	if r != nil {
		attrs = append(attrs, logger.Method(r.Method), logger.Path(r.URL.Path))
	}
	var st stackTracer
	if errors.As(err, &st) {
		attrs = append(attrs, logger.Stack(st.Stack()))
	}
	s.log.ErrorContext(ctx, "unhandled request error", attrs...)
}
