package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fresco/core/fsroute"
	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/island"
	"github.com/dmitrymomot/fresco/core/logger"
	"github.com/dmitrymomot/fresco/core/partial"
	"github.com/dmitrymomot/fresco/core/response"
	"github.com/dmitrymomot/fresco/core/route"
	"github.com/dmitrymomot/fresco/pkg/report"
)

// Dispatcher serves requests from a route table. It is an http.Handler and is
// safe for concurrent use. The table can be replaced at any time with Swap;
// requests already in flight finish against the table they started with.
type Dispatcher struct {
	table atomic.Pointer[fsroute.Table]

	logger         *slog.Logger
	reporter       report.Reporter
	trailingSlash  route.TrailingSlash
	buildID        string
	partialParam   string
	strictPartials bool
	manifest       island.Manifest
}

// New creates a Dispatcher serving table. A nil table serves only 404s until
// Swap installs one.
func New(table *fsroute.Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:       logger.Nop(),
		partialParam: partial.DefaultParam,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reporter == nil {
		d.reporter = report.NewSlog(d.logger)
	}
	if d.buildID == "" {
		d.buildID = uuid.NewString()
	}
	if table == nil {
		table = new(fsroute.Table)
	}
	d.table.Store(table)
	return d
}

// Swap installs a new table and returns the previous one.
func (d *Dispatcher) Swap(table *fsroute.Table) *fsroute.Table {
	if table == nil {
		table = new(fsroute.Table)
	}
	return d.table.Swap(table)
}

// Table returns the table currently served.
func (d *Dispatcher) Table() *fsroute.Table {
	return d.table.Load()
}

// BuildID returns the build identifier embedded in responses.
func (d *Dispatcher) BuildID() string {
	return d.buildID
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.Dispatch(w, r)
}

// Dispatch runs one request through the pipeline: trailing slash
// normalisation, route match, middleware chain, handler, rendering and error
// pages.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	table := d.table.Load()

	path := r.URL.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target := d.trailingSlash.Normalize(path); target != path {
		d.redirect(ww, r, target)
		return
	}

	rt, params, ok := table.Match(path)
	if !ok {
		if rt, ok = table.NotFound(path); ok {
			params, _ = rt.Pattern.Match(path)
		}
	}
	if !ok {
		d.notFound(ww, r, table.RootMiddleware())
		return
	}

	opts := []handler.ContextOption{
		handler.WithParams(params),
		handler.WithPattern(rt.Pattern.String()),
		handler.WithBuildID(d.buildID),
		handler.WithChain(rt.Middleware, d.endpoint(rt)),
		handler.WithRenderer(d.renderer(rt.Layouts, rt.App, defaultStatus(rt))),
	}
	if names, ok := partial.FromRequest(r, d.partialParam); ok {
		opts = append(opts, handler.WithPartial(names))
	}
	ctx := handler.NewContext(r, opts...)

	if err := d.run(ww, ctx); err != nil {
		d.fail(ww, ctx, rt.ErrorPage, err)
	}
}

// notFound answers an unmatched request with the built-in 404, still running
// the root middleware around it.
func (d *Dispatcher) notFound(w *responseWriter, r *http.Request, chain []handler.Middleware) {
	opts := []handler.ContextOption{
		handler.WithBuildID(d.buildID),
		handler.WithChain(chain, func(ctx *handler.Context) (handler.Response, error) {
			return response.ErrorFor(ctx.Request(), errNotFound), nil
		}),
	}
	if names, ok := partial.FromRequest(r, d.partialParam); ok {
		opts = append(opts, handler.WithPartial(names))
	}
	ctx := handler.NewContext(r, opts...)

	if err := d.run(w, ctx); err != nil {
		d.fail(w, ctx, nil, err)
	}
}

func defaultStatus(rt *fsroute.CompiledRoute) int {
	if rt.NotFound {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// endpoint selects the handler for the request method.
func (d *Dispatcher) endpoint(rt *fsroute.CompiledRoute) handler.HandlerFunc {
	return func(ctx *handler.Context) (handler.Response, error) {
		h, ok := rt.Handler(ctx.Request().Method)
		if !ok {
			allow := strings.Join(rt.Methods(), ", ")
			return response.WithHeaders(
				response.ErrorFor(ctx.Request(), errMethodNotAllowed),
				map[string]string{"Allow": allow},
			), nil
		}
		return h(ctx)
	}
}

// run executes the chain and writes its response. Panics at any stage come
// back as a PanicError.
func (d *Dispatcher) run(w *responseWriter, ctx *handler.Context) (err error) {
	defer recoverPanic(&err)

	resp, err := ctx.Next()
	if err != nil {
		return err
	}
	if resp == nil {
		return ErrNilResponse
	}
	return resp(w, ctx.Request())
}

func recoverPanic(err *error) {
	if p := recover(); p != nil {
		*err = &panicError{value: p, stack: debug.Stack()}
	}
}

// fail turns err into a response through the error page, falling back to the
// built-in error response when there is none or it fails too.
func (d *Dispatcher) fail(w *responseWriter, ctx *handler.Context, page *fsroute.CompiledErrorPage, err error) {
	r := ctx.Request()

	if w.Written() {
		d.reporter.Report(ctx, r, err)
		return
	}

	if page != nil {
		perr := d.renderErrorPage(w, ctx, page, err)
		if perr == nil {
			d.observe(ctx, r, err)
			return
		}
		err = withStatus(errors.Join(err, perr), http.StatusInternalServerError)
		if w.Written() {
			d.reporter.Report(ctx, r, err)
			return
		}
	}

	d.builtIn(w, r, err)
	d.observe(ctx, r, err)
}

// observe reports server errors. Client errors are expected traffic.
func (d *Dispatcher) observe(ctx context.Context, r *http.Request, err error) {
	if response.StatusOf(err) < http.StatusInternalServerError {
		return
	}
	d.reporter.Report(ctx, r, err)
}

func (d *Dispatcher) renderErrorPage(w *responseWriter, ctx *handler.Context, page *fsroute.CompiledErrorPage, cause error) (err error) {
	defer recoverPanic(&err)

	opts := []handler.ContextOption{
		handler.WithParams(ctx.Params()),
		handler.WithPattern(ctx.Pattern()),
		handler.WithBuildID(d.buildID),
		handler.WithState(ctx.State()),
		handler.WithRenderer(d.renderer(page.Layouts, page.App, response.StatusOf(cause))),
	}
	if ctx.IsPartial() {
		opts = append(opts, handler.WithPartial(ctx.PartialNames()))
	}
	ectx := handler.NewContext(ctx.Request(), opts...)

	resp, err := page.Handler(ectx, cause)
	if err != nil {
		return err
	}
	if resp == nil {
		return ErrNilResponse
	}
	return resp(w, ectx.Request())
}

// builtIn writes the minimal error response used when no error page applies.
func (d *Dispatcher) builtIn(w *responseWriter, r *http.Request, err error) {
	if w.Written() {
		return
	}
	if werr := response.ErrorFor(r, err)(w, r); werr != nil {
		d.logger.ErrorContext(r.Context(), "failed to write error response",
			logger.Component("router"),
			logger.Error(werr),
			logger.Path(r.URL.Path),
		)
	}
}

// redirect sends a 308 to the normalised path, keeping the query.
func (d *Dispatcher) redirect(w *responseWriter, r *http.Request, target string) {
	if strings.HasPrefix(target, "//") {
		target = "/" + strings.TrimLeft(target, "/")
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	_ = response.RedirectPermanentPreserve(target)(w, r)
}
