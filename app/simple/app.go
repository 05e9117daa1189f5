// Package simple assembles a routing namespace, the dispatcher and the
// standard middleware into a runnable HTTP application.
package simple

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/fresco/core/config"
	"github.com/dmitrymomot/fresco/core/fsroute"
	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/logger"
	"github.com/dmitrymomot/fresco/core/router"
	"github.com/dmitrymomot/fresco/middleware"
	"github.com/dmitrymomot/fresco/pkg/report"
)

type App struct {
	config     *Config
	dispatcher *router.Dispatcher
	logger     *slog.Logger
	reporter   report.Reporter
	registry   *prometheus.Registry
	tracer     trace.TracerProvider
	extra      []handler.Middleware
	handler    http.Handler
}

type AppOption func(*App) error

// NewApp builds the route table from ns and wires the dispatcher. The
// request id, tracing, logging and metrics middleware run before any
// middleware declared in ns.
func NewApp(ns fsroute.Namespace, opts ...AppOption) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		var cfg Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		app.config = &cfg
	}
	cfg := app.config

	if app.logger == nil {
		app.logger = newLogger(cfg)
	}
	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
	}

	reporter := report.Reporter(report.NewSlog(app.logger))
	if cfg.SentryDSN != "" {
		s, err := report.NewSentryFromDSN(cfg.SentryDSN, cfg.Env, report.WithTag("app", cfg.AppName))
		if err != nil {
			return nil, err
		}
		reporter = report.Multi{reporter, s}
	}
	if app.reporter != nil {
		reporter = report.Multi{reporter, app.reporter}
	}

	table, err := fsroute.Build(withStack(ns, app.stack()), cfg.Router.BuildOptions()...)
	if err != nil {
		return nil, fmt.Errorf("simple: build routes: %w", err)
	}

	app.dispatcher = router.New(table,
		router.WithConfig(cfg.Router),
		router.WithLogger(app.logger),
		router.WithReporter(reporter),
	)
	app.handler = app.routes()
	return app, nil
}

// WithConfig skips loading the configuration from the environment.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = &cfg
		return nil
	}
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

// WithReporter adds a reporter next to the logging one.
func WithReporter(r report.Reporter) AppOption {
	return func(app *App) error {
		if r == nil {
			return errors.New("reporter cannot be nil")
		}
		app.reporter = r
		return nil
	}
}

func WithRegistry(reg *prometheus.Registry) AppOption {
	return func(app *App) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		app.registry = reg
		return nil
	}
}

func WithTracerProvider(tp trace.TracerProvider) AppOption {
	return func(app *App) error {
		if tp == nil {
			return errors.New("tracer provider cannot be nil")
		}
		app.tracer = tp
		return nil
	}
}

// WithMiddleware appends root middleware after the standard stack.
func WithMiddleware(mws ...handler.Middleware) AppOption {
	return func(app *App) error {
		app.extra = append(app.extra, mws...)
		return nil
	}
}

func (a *App) Logger() *slog.Logger { return a.logger }
func (a *App) Dispatcher() *router.Dispatcher { return a.dispatcher }
func (a *App) Registry() *prometheus.Registry { return a.registry }
func (a *App) Handler() http.Handler { return a.handler }

// Run serves until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("simple: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "starting server",
			slog.String("addr", ln.Addr().String()),
			logger.BuildID(a.dispatcher.BuildID()),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server gracefully", slog.Duration("timeout", a.config.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", logger.Error(err))
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("server shutdown complete")
	return nil
}

func (a *App) stack() []handler.Middleware {
	stack := []handler.Middleware{
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{TracerProvider: a.tracer}),
		middleware.LoggingWithLogger(a.logger),
		middleware.MetricsWithConfig(middleware.MetricsConfig{Registerer: a.registry}),
	}
	return append(stack, a.extra...)
}

func (a *App) routes() http.Handler {
	path := a.config.MetricsPath
	if path == "" {
		return a.dispatcher
	}
	metrics := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == path {
			metrics.ServeHTTP(w, r)
			return
		}
		a.dispatcher.ServeHTTP(w, r)
	})
}

// withStack returns a copy of ns whose root middleware starts with stack.
func withStack(ns fsroute.Namespace, stack []handler.Middleware) fsroute.Namespace {
	out := make(fsroute.Namespace, len(ns)+1)
	for k, v := range ns {
		out[k] = v
	}
	if mw, ok := ns["_middleware"].(*fsroute.Middleware); ok && mw != nil {
		stack = append(stack, mw.Handlers...)
	}
	out["_middleware"] = &fsroute.Middleware{Handlers: stack}
	return out
}

func newLogger(cfg *Config) *slog.Logger {
	opts := []logger.Option{logger.WithProduction(cfg.AppName)}
	if cfg.Env == "development" {
		opts = []logger.Option{logger.WithDevelopment(cfg.AppName)}
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	opts = append(opts, logger.WithContextExtractors(
		middleware.RequestIDExtractor(),
		middleware.TraceIDExtractor(),
	))
	return logger.New(opts...)
}
