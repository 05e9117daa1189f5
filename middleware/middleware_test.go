package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fresco/core/fsroute"
	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/response"
	"github.com/dmitrymomot/fresco/core/router"
)

func route(h handler.HandlerFunc) *fsroute.Route {
	return &fsroute.Route{Handlers: map[string]handler.HandlerFunc{http.MethodGet: h}}
}

// site returns the routes shared by the middleware tests.
func site() fsroute.Namespace {
	return fsroute.Namespace{
		"index": route(func(*handler.Context) (handler.Response, error) {
			return response.String("ok"), nil
		}),
		"blog/[slug]": route(func(ctx *handler.Context) (handler.Response, error) {
			return response.String("post " + ctx.Param("slug")), nil
		}),
		"forbidden": route(func(*handler.Context) (handler.Response, error) {
			return nil, response.ErrForbidden
		}),
		"boom": route(func(*handler.Context) (handler.Response, error) {
			return nil, errors.New("boom")
		}),
	}
}

// newHandler serves ns with mws registered as root middleware.
func newHandler(t *testing.T, ns fsroute.Namespace, mws ...handler.Middleware) http.Handler {
	t.Helper()
	ns["_middleware"] = &fsroute.Middleware{Handlers: mws}
	table, err := fsroute.Build(ns)
	require.NoError(t, err)
	return router.New(table, router.WithBuildID("test-build"))
}

func serve(h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// logRecorder captures log records.
type logRecorder struct {
	mu      sync.Mutex
	records []logRecord
}

type logRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

func (h *logRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *logRecorder) Handle(_ context.Context, r slog.Record) error {
	rec := logRecord{level: r.Level, msg: r.Message, attrs: make(map[string]any)}
	r.Attrs(func(a slog.Attr) bool {
		rec.attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func (h *logRecorder) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *logRecorder) WithGroup(string) slog.Handler {
	return h
}

func (h *logRecorder) all() []logRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]logRecord(nil), h.records...)
}
