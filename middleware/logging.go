package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for successful requests (default: slog.LevelInfo)
	LogLevel slog.Level

	// LogHeaders enables logging of request headers (default: false for security)
	LogHeaders bool

	// SensitiveHeaders is a list of header names to redact (default: common auth headers)
	SensitiveHeaders []string

	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration

	// Component name for structured logging
	Component string
}

// Logging creates a request logging middleware with default configuration.
func Logging() handler.Middleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger(log *slog.Logger) handler.Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom configuration.
// One record is written per request once its response is written, or as soon
// as the chain fails. Server errors are logged at error level, client errors
// and slow requests at warning level.
func LoggingWithConfig(cfg LoggingConfig) handler.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = []string{
			"Authorization",
			"Cookie",
			"Set-Cookie",
			"X-Api-Key",
			"X-Auth-Token",
			"X-Csrf-Token",
		}
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(ctx *handler.Context) (handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return ctx.Next()
		}

		start := time.Now()
		req := ctx.Request()

		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Event("request"),
			logger.Method(req.Method),
			logger.Path(req.URL.Path),
			logger.Route(ctx.Pattern()),
			logger.Partial(ctx.PartialNames()),
		}
		if cfg.LogHeaders {
			attrs = append(attrs, slog.Any("request_headers", redact(req.Header, cfg.SensitiveHeaders)))
		}

		resp, err := ctx.Next()
		return observe(resp, err, func(out outcome) {
			duration := time.Since(start)
			rec := append(slices.Clip(attrs),
				logger.StatusCode(out.status),
				logger.Latency(duration),
				slog.Int64("bytes_out", out.size),
			)
			if id, ok := GetRequestID(ctx); ok {
				rec = append(rec, logger.RequestID(id))
			}

			level := cfg.LogLevel
			msg := "HTTP request completed"
			switch {
			case out.status >= http.StatusInternalServerError:
				level = slog.LevelError
				msg = "HTTP request failed"
				rec = append(rec, logger.Error(out.err))
			case out.status >= http.StatusBadRequest:
				level = slog.LevelWarn
				rec = append(rec, logger.Error(out.err))
			case duration > cfg.SlowRequestThreshold:
				level = slog.LevelWarn
				rec = append(rec, slog.Bool("slow_request", true))
			}

			cfg.Logger.LogAttrs(ctx, level, msg, rec...)
		})
	}
}

func redact(h http.Header, sensitive []string) map[string]any {
	headers := make(map[string]any, len(h))
	for key, values := range h {
		switch {
		case slices.ContainsFunc(sensitive, func(s string) bool { return strings.EqualFold(s, key) }):
			headers[key] = "[REDACTED]"
		case len(values) == 1:
			headers[key] = values[0]
		default:
			headers[key] = values
		}
	}
	return headers
}
