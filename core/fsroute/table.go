package fsroute

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/route"
)

// CompiledRoute is a route ready for dispatch. Middleware and layouts are resolved
// at build time.
type CompiledRoute struct {
	Pattern  *route.Pattern
	Handlers map[string]handler.HandlerFunc
	Config   RouteConfig
	// Source is the namespace key the route was declared under.
	Source string
	// Dir is the namespace directory, groups included.
	Dir string
	// Middleware runs root to leaf.
	Middleware []handler.Middleware
	// Layouts wrap the page innermost first.
	Layouts []handler.LayoutFunc
	// App is the outermost wrapper, nil when absent or skipped.
	App handler.LayoutFunc
	// ErrorPage is the nearest-ancestor _500, nil when none exists.
	ErrorPage *CompiledErrorPage
	// NotFound marks a _404 handler compiled as a catch-all route for its directory.
	NotFound bool

	score route.Score
}

// Handler returns the handler for the method. HEAD falls back to GET and "*"
// matches any method.
func (r *CompiledRoute) Handler(method string) (handler.HandlerFunc, bool) {
	if h, ok := r.Handlers[method]; ok {
		return h, true
	}
	if method == http.MethodHead {
		if h, ok := r.Handlers[http.MethodGet]; ok {
			return h, true
		}
	}
	h, ok := r.Handlers["*"]
	return h, ok
}

// Methods returns the sorted methods the route accepts, HEAD included when GET is.
func (r *CompiledRoute) Methods() []string {
	methods := make([]string, 0, len(r.Handlers)+1)
	for m := range r.Handlers {
		methods = append(methods, m)
	}
	if _, ok := r.Handlers[http.MethodGet]; ok {
		if _, ok := r.Handlers[http.MethodHead]; !ok {
			methods = append(methods, http.MethodHead)
		}
	}
	slices.Sort(methods)
	return methods
}

// CompiledErrorPage is a _500 handler with the layouts of its directory.
type CompiledErrorPage struct {
	Handler handler.ErrorHandler
	Source  string
	Dir     string
	Layouts []handler.LayoutFunc
	App     handler.LayoutFunc
}

// Info describes a route for introspection.
type Info struct {
	Pattern string
	Methods []string
	Source  string
}

// Table is an immutable, score-ordered route table. It is safe for concurrent use.
type Table struct {
	routes   []*CompiledRoute
	notFound []*CompiledRoute
	errors   map[string]*CompiledErrorPage
	root     []handler.Middleware
}

// Match returns the most specific route matching the escaped path.
func (t *Table) Match(path string) (*CompiledRoute, route.Params, bool) {
	for _, r := range t.routes {
		if params, ok := r.Pattern.Match(path); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}

// NotFound returns the _404 of the deepest directory whose URL covers the path.
func (t *Table) NotFound(path string) (*CompiledRoute, bool) {
	for _, r := range t.notFound {
		if _, ok := r.Pattern.Match(path); ok {
			return r, true
		}
	}
	return nil, false
}

// RootMiddleware returns the middleware declared at the namespace root. It wraps
// requests no route or _404 handles.
func (t *Table) RootMiddleware() []handler.Middleware {
	return t.root
}

// ErrorPage returns the nearest-ancestor _500 of a namespace directory.
func (t *Table) ErrorPage(dir string) (*CompiledErrorPage, bool) {
	for _, d := range ancestors(dir) {
		if ep, ok := t.errors[d]; ok {
			return ep, true
		}
	}
	return nil, false
}

// Routes returns the routes in match order.
func (t *Table) Routes() []Info {
	out := make([]Info, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, Info{
			Pattern: r.Pattern.URL(),
			Methods: r.Methods(),
			Source:  r.Source,
		})
	}
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// String renders the table one route per line, in match order.
func (t *Table) String() string {
	var b strings.Builder
	for _, info := range t.Routes() {
		b.WriteString(strings.Join(info.Methods, ","))
		b.WriteByte('\t')
		b.WriteString(info.Pattern)
		b.WriteByte('\t')
		b.WriteString(info.Source)
		b.WriteByte('\n')
	}
	return b.String()
}
