package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/fresco/core/handler"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *handler.Context) bool
	// Registerer receives the collectors (default: prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer
	// Namespace prefixes metric names (default: "fresco")
	Namespace string
	// Buckets of the duration histogram in seconds (default: prometheus.DefBuckets)
	Buckets []float64
}

// Metrics creates a metrics middleware registered with the default registerer.
func Metrics() handler.Middleware {
	return MetricsWithConfig(MetricsConfig{})
}

// MetricsWithConfig creates a middleware counting requests and observing their
// duration, labelled by method, route pattern, status and whether the request
// was a partial navigation. Labels use the route pattern, never the raw path,
// to keep cardinality bounded. It panics if the collectors cannot be
// registered, like promauto.
func MetricsWithConfig(cfg MetricsConfig) handler.Middleware {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "fresco"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(cfg.Registerer)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "requests_total",
		Help:      "Number of dispatched requests.",
	}, []string{"method", "route", "status", "partial"})
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "request_duration_seconds",
		Help:      "Time spent dispatching a request, including writing the response.",
		Buckets:   cfg.Buckets,
	}, []string{"method", "route", "partial"})

	return func(ctx *handler.Context) (handler.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return ctx.Next()
		}

		start := time.Now()
		method := ctx.Request().Method
		route := ctx.Pattern()
		partial := strconv.FormatBool(ctx.IsPartial())

		resp, err := ctx.Next()
		return observe(resp, err, func(out outcome) {
			requests.WithLabelValues(method, route, strconv.Itoa(out.status), partial).Inc()
			duration.WithLabelValues(method, route, partial).Observe(time.Since(start).Seconds())
		})
	}
}
