package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fresco/core/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestStringAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{name: "request id", attr: logger.RequestID("req-1"), key: "request_id", want: "req-1"},
		{name: "trace id", attr: logger.TraceID("t-1"), key: "trace_id", want: "t-1"},
		{name: "method", attr: logger.Method("GET"), key: "method", want: "GET"},
		{name: "path", attr: logger.Path("/blog"), key: "path", want: "/blog"},
		{name: "component", attr: logger.Component("router"), key: "component", want: "router"},
		{name: "event", attr: logger.Event("dispatch"), key: "event", want: "dispatch"},
		{name: "route", attr: logger.Route("/blog/:slug"), key: "route", want: "/blog/:slug"},
		{name: "source", attr: logger.Source("blog/[slug]"), key: "source", want: "blog/[slug]"},
		{name: "partial", attr: logger.Partial([]string{"main", "aside"}), key: "partial", want: "main,aside"},
		{name: "build id", attr: logger.BuildID("b1"), key: "build_id", want: "b1"},
		{name: "stack", attr: logger.Stack([]byte("goroutine 1")), key: "stack", want: "goroutine 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}
}

func TestEmptyAttrs(t *testing.T) {
	t.Parallel()

	for _, attr := range []slog.Attr{
		logger.RequestID(""),
		logger.TraceID(""),
		logger.Route(""),
		logger.Source(""),
		logger.Partial(nil),
		logger.BuildID(""),
		logger.Stack(nil),
	} {
		assert.True(t, attr.Equal(slog.Attr{}))
	}
}

func TestNumericAttrs(t *testing.T) {
	t.Parallel()

	attr := logger.StatusCode(404)
	require.Equal(t, "status_code", attr.Key)
	assert.Equal(t, int64(404), attr.Value.Int64())

	attr = logger.Latency(100 * time.Millisecond)
	require.Equal(t, "latency", attr.Key)
	assert.Equal(t, 100*time.Millisecond, attr.Value.Duration())
}

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json with attrs and extractor", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithProduction("blog"),
			logger.WithOutput(&buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				id, ok := ctx.Value(ctxKey{}).(string)
				return logger.RequestID(id), ok
			}),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-9")
		log.InfoContext(ctx, "dispatched", logger.Path("/"))

		out := buf.String()
		assert.Contains(t, out, `"msg":"dispatched"`)
		assert.Contains(t, out, `"service":"blog"`)
		assert.Contains(t, out, `"request_id":"req-9"`)
		assert.Contains(t, out, `"path":"/"`)
	})

	t.Run("level filters", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithLevel(slog.LevelWarn), logger.WithOutput(&buf))
		log.Info("hidden")
		log.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("development", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("blog"), logger.WithOutput(&buf))
		log.WithGroup("g").Debug("debugging")
		assert.Contains(t, buf.String(), "msg=debugging")
		assert.Contains(t, buf.String(), "env=development")
	})
}
