// Package logger provides a slog logger factory and attribute helpers for the
// dispatcher, middleware and reporters.
//
// # Factory
//
//	log := logger.New(
//		logger.WithProduction("blog"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//
// Nop returns the logger every component uses when none is injected.
//
// # Attributes
//
// Helpers return an empty attribute for zero inputs, so they can be passed
// unconditionally:
//
//	log.ErrorContext(ctx, "render failed",
//		logger.Error(err),
//		logger.Route(ctx.Pattern()),
//		logger.Partial(ctx.PartialNames()),
//	)
package logger
