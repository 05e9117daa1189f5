package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Sentry reports errors to Sentry.
type Sentry struct {
	hub  *sentry.Hub
	tags map[string]string
}

// SentryOption configures a Sentry reporter.
type SentryOption func(*Sentry)

// WithTag adds a tag to every reported event.
func WithTag(key, value string) SentryOption {
	return func(s *Sentry) {
		s.tags[key] = value
	}
}

// NewSentry creates a reporter on the hub. A nil hub selects the current hub.
func NewSentry(hub *sentry.Hub, opts ...SentryOption) *Sentry {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	s := &Sentry{hub: hub, tags: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSentryFromDSN creates a reporter with its own client.
func NewSentryFromDSN(dsn, environment string, opts ...SentryOption) (*Sentry, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:          dsn,
		Environment:  environment,
		IgnoreErrors: []string{"write: broken pipe"},
	})
	if err != nil {
		return nil, fmt.Errorf("report: unable to init Sentry: %w", err)
	}
	return NewSentry(sentry.NewHub(client, sentry.NewScope()), opts...), nil
}

// Report implements Reporter.
func (s *Sentry) Report(_ context.Context, r *http.Request, err error) {
	if err == nil {
		return
	}

	hub := s.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
		}
		for k, v := range s.tags {
			scope.SetTag(k, v)
		}
		var st stackTracer
		if errors.As(err, &st) {
			scope.SetExtra("stack", string(st.Stack()))
		}
		scope.SetLevel(sentry.LevelError)
		hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be sent.
func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
