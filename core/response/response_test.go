package response_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/partial"
	"github.com/dmitrymomot/fresco/core/response"
)

type teapotError struct{}

func (teapotError) Error() string   { return "short and stout" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

type forbiddenError struct{}

func (forbiddenError) Error() string   { return "no access" }
func (forbiddenError) StatusCode() int { return http.StatusForbidden }

func TestBodyResponses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		build       func() handler.Response
		status      int
		contentType string
		body        string
	}{
		{
			name:        "string",
			build:       func() handler.Response { return response.String("hello") },
			status:      http.StatusOK,
			contentType: "text/plain; charset=utf-8",
			body:        "hello",
		},
		{
			name:        "string_with_status",
			build:       func() handler.Response { return response.StringWithStatus("gone", http.StatusGone) },
			status:      http.StatusGone,
			contentType: "text/plain; charset=utf-8",
			body:        "gone",
		},
		{
			name:        "html_zero_status",
			build:       func() handler.Response { return response.HTMLWithStatus("<p>x</p>", 0) },
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        "<p>x</p>",
		},
		{
			name:        "bytes",
			build:       func() handler.Response { return response.Bytes([]byte("raw"), "application/octet-stream") },
			status:      http.StatusOK,
			contentType: "application/octet-stream",
			body:        "raw",
		},
		{
			name:   "no_content",
			build:  func() handler.Response { return response.NoContent() },
			status: http.StatusNoContent,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			require.NoError(t, response.Write(w, req, tt.build()))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestHeadRequestOmitsBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodHead, "/", nil)
	w := httptest.NewRecorder()

	require.NoError(t, response.HTML("<p>body</p>")(w, req))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("encodes value", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.JSON(map[string]int{"n": 1})(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"n":1}`, w.Body.String())
	})

	t.Run("nil with zero status is no content", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.JSONWithStatus(nil, 0)(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestTempl(t *testing.T) {
	t.Parallel()

	type key struct{}
	component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<p>%v</p>", ctx.Value(key{}))
		return err
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), key{}, "ctx-value"))
	w := httptest.NewRecorder()

	require.NoError(t, response.TemplWithStatus(component, http.StatusAccepted)(w, req))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "<p>ctx-value</p>", w.Body.String())

	assert.Nil(t, response.Templ(nil))

	failing := templ.ComponentFunc(func(context.Context, io.Writer) error { return errors.New("boom") })
	err := response.Templ(failing)(httptest.NewRecorder(), req)
	assert.ErrorContains(t, err, "boom")
}

func TestRedirects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   func(string) handler.Response
		status int
	}{
		{"found", func(u string) handler.Response { return response.Redirect(u) }, http.StatusFound},
		{"moved", func(u string) handler.Response { return response.RedirectPermanent(u) }, http.StatusMovedPermanently},
		{"see_other", func(u string) handler.Response { return response.RedirectSeeOther(u) }, http.StatusSeeOther},
		{"temporary", func(u string) handler.Response { return response.RedirectTemporary(u) }, http.StatusTemporaryRedirect},
		{"permanent_preserve", func(u string) handler.Response { return response.RedirectPermanentPreserve(u) }, http.StatusPermanentRedirect},
		{"invalid_status", func(u string) handler.Response { return response.RedirectWithStatus(u, 200) }, http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/from", nil)
			w := httptest.NewRecorder()

			require.NoError(t, tt.resp("/to?x=1")(w, req))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "/to?x=1", w.Header().Get("Location"))
		})
	}

	t.Run("partial navigation varies on header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/from", nil)
		req.Header.Set(partial.Header, "main")
		w := httptest.NewRecorder()

		require.NoError(t, response.RedirectPermanentPreserve("/to")(w, req))
		assert.Equal(t, http.StatusPermanentRedirect, w.Code)
		assert.Equal(t, partial.Header, w.Header().Get("Vary"))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"plain error", errors.New("db down"), http.StatusInternalServerError, "internal_server_error"},
		{"http error", response.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped http error", fmt.Errorf("load: %w", response.ErrConflict), http.StatusConflict, "conflict"},
		{"status code interface", forbiddenError{}, http.StatusForbidden, "forbidden"},
		{"unmapped status", teapotError{}, http.StatusTeapot, "im_a_teapot"},
		{"entity too large", response.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "request_entity_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			httpErr := response.AsHTTPError(tt.err)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.status, response.StatusOf(tt.err))
		})
	}
}

func TestHTTPErrorWithErrorDoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := response.ErrBadRequest.WithDetails(map[string]any{"field": "email"})
	withCause := base.WithError(errors.New("invalid"))

	assert.Equal(t, "invalid", withCause.Details["cause"])
	assert.Equal(t, "email", withCause.Details["field"])
	assert.NotContains(t, base.Details, "cause")
}

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.ErrorText(response.ErrForbidden.WithMessage("members only"))(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "members only", w.Body.String())
	})

	t.Run("json hides cause of server errors", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.ErrorJSON(errors.New("secret dsn"))(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret dsn")

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "internal_server_error", body["code"])
	})

	t.Run("negotiates json", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		require.NoError(t, response.ErrorFor(req, response.ErrNotFound)(w, req))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("error response propagates", func(t *testing.T) {
		t.Parallel()
		sentinel := errors.New("sentinel")
		err := response.Error(sentinel)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, sentinel)
	})
}

func TestDecorators(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	t.Run("headers and cookie", func(t *testing.T) {
		t.Parallel()
		resp := response.WithCookie(
			response.WithHeaders(response.String("ok"), map[string]string{"X-Custom": "1"}),
			&http.Cookie{Name: "session", Value: "abc"},
		)
		w := httptest.NewRecorder()
		require.NoError(t, resp(w, req))
		assert.Equal(t, "1", w.Header().Get("X-Custom"))
		assert.Contains(t, w.Header().Get("Set-Cookie"), "session=abc")
	})

	t.Run("cache", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.WithCache(response.String("ok"), time.Hour)(w, req))
		assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

		w = httptest.NewRecorder()
		require.NoError(t, response.WithCache(response.String("ok"), 0)(w, req))
		assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	})

	t.Run("nil passthrough", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, response.WithCache(nil, time.Hour))
		assert.Nil(t, response.WithHeaders(nil, map[string]string{"a": "b"}))
		assert.Nil(t, response.WithCookie(nil, &http.Cookie{}))
	})
}

func TestPartialEnvelope(t *testing.T) {
	t.Parallel()

	env := &partial.Envelope{
		BuildID:  "b1",
		Partials: []partial.Payload{{Name: "main", Mode: partial.ModeReplace, Content: "<p>x</p>"}},
	}
	w := httptest.NewRecorder()
	require.NoError(t, response.Partial(env, 0)(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, partial.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, partial.Header, w.Header().Get("Vary"))

	var decoded partial.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, "b1", decoded.BuildID)
	require.Len(t, decoded.Partials, 1)
	assert.Equal(t, "<p>x</p>", decoded.Partials[0].Content)

	assert.Nil(t, response.Partial(nil, 0))
}
