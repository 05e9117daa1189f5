// Package middleware provides dispatch middleware for cross-cutting concerns:
// request IDs, request logging, Prometheus metrics and OpenTelemetry tracing.
//
// Every middleware is a handler.Middleware. It runs inside the dispatcher's
// chain, calls ctx.Next to run the rest of it and observes the result, so
// registering them under the namespace root as _middleware covers every
// route:
//
//	ns := fsroute.Namespace{
//		"_middleware": &fsroute.Middleware{Handlers: []handler.Middleware{
//			middleware.RequestID(),
//			middleware.Tracing(),
//			middleware.LoggingWithLogger(log),
//			middleware.Metrics(),
//		}},
//		// routes...
//	}
//
// # Configuration
//
// Each middleware has a default constructor and a WithConfig variant taking a
// config struct. All config structs accept a Skip function to bypass the
// middleware for selected requests:
//
//	middleware.LoggingWithConfig(middleware.LoggingConfig{
//		Logger:     log,
//		LogHeaders: true,
//		Skip: func(ctx *handler.Context) bool {
//			return ctx.Request().URL.Path == "/health"
//		},
//	})
//
// # Observing outcomes
//
// Logging, metrics and tracing record the outcome of a request once it is
// known: after the response has been written, or as soon as the chain
// returns an error. A failed request is recorded with the status its error
// maps to (see response.StatusOf); the error page rendered for it runs
// outside the chain.
//
// # Log correlation
//
// RequestIDExtractor and TraceIDExtractor add the request and trace IDs to
// every record logged with a request context:
//
//	log := logger.New(logger.WithContextExtractors(
//		middleware.RequestIDExtractor(),
//		middleware.TraceIDExtractor(),
//	))
package middleware
