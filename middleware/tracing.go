package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/logger"
)

const tracerName = "github.com/dmitrymomot/fresco/middleware"

// TracingConfig configures the OpenTelemetry tracing middleware.
type TracingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool
	// TracerProvider creates the tracer (default: otel.GetTracerProvider())
	TracerProvider trace.TracerProvider
	// Propagator extracts the parent span from request headers (default: otel.GetTextMapPropagator())
	Propagator propagation.TextMapPropagator
}

// Tracing creates a tracing middleware using the global provider and propagator.
func Tracing() handler.Middleware {
	return TracingWithConfig(TracingConfig{})
}

// TracingWithConfig creates a middleware starting one server span per request,
// named after the method and route pattern. The span context is installed on
// the request, so spans started by handlers and layouts are its children. The
// span ends when the response is written or the chain fails; server errors
// mark it as failed.
func TracingWithConfig(cfg TracingConfig) handler.Middleware {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	tracer := cfg.TracerProvider.Tracer(tracerName)

	return func(ctx *handler.Context) (handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return ctx.Next()
		}

		req := ctx.Request()
		parent := cfg.Propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", req.Method),
			attribute.String("http.route", ctx.Pattern()),
			attribute.String("url.path", req.URL.Path),
			attribute.Bool("fresco.partial", ctx.IsPartial()),
		}
		if names := ctx.PartialNames(); len(names) > 0 {
			attrs = append(attrs, attribute.String("fresco.partial.names", strings.Join(names, ",")))
		}

		spanCtx, span := tracer.Start(parent, req.Method+" "+ctx.Pattern(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		ctx.SetContext(spanCtx)

		resp, err := ctx.Next()
		return observe(resp, err, func(out outcome) {
			span.SetAttributes(attribute.Int("http.response.status_code", out.status))
			if out.err != nil {
				span.RecordError(out.err)
			}
			if out.status >= http.StatusInternalServerError {
				msg := http.StatusText(out.status)
				if out.err != nil {
					msg = out.err.Error()
				}
				span.SetStatus(codes.Error, msg)
			}
			span.End()
		})
	}
}

// TraceIDExtractor adds the trace ID of the active span to every record logged
// with a request context. Use it with logger.WithContextExtractors.
func TraceIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		sc := trace.SpanContextFromContext(ctx)
		if !sc.HasTraceID() {
			return slog.Attr{}, false
		}
		return logger.TraceID(sc.TraceID().String()), true
	}
}
