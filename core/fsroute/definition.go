package fsroute

import (
	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/route"
)

// Definition is a value supplied by the module loader for one namespace key.
// It is one of *Route, *Middleware, *Layout, *App, *NotFound or *ErrorPage.
type Definition interface {
	definition()
}

// Namespace maps slash-separated paths without extension to definitions.
type Namespace map[string]Definition

// RouteConfig holds per-route flags.
type RouteConfig struct {
	// RouteOverride replaces the path inferred from the namespace key. It is
	// absolute when it starts with '/', otherwise relative to the directory URL.
	RouteOverride string
	// SkipAppWrapper disables the _app wrapper for the route.
	SkipAppWrapper bool
	// SkipInheritedLayouts disables every _layout for the route.
	SkipInheritedLayouts bool
	// RegexRank is the declared specificity of regex segments in the pattern.
	RegexRank route.Rank
}

// Route maps HTTP methods to handlers. The method "*" matches any method.
type Route struct {
	Handlers map[string]handler.HandlerFunc
	Config   RouteConfig
}

// Middleware applies to every route under its directory, in slice order.
type Middleware struct {
	Handlers []handler.Middleware
}

// Layout wraps rendered pages under its directory.
type Layout struct {
	Render handler.LayoutFunc
	// SkipInheritedLayouts stops layouts of parent directories from wrapping this one.
	SkipInheritedLayouts bool
}

// App is the outermost document wrapper. Only valid at the namespace root.
type App struct {
	Render handler.LayoutFunc
}

// NotFound handles unmatched paths under its directory.
type NotFound struct {
	Handler handler.HandlerFunc
}

// ErrorPage handles errors raised by routes under its directory.
type ErrorPage struct {
	Handler handler.ErrorHandler
}

func (*Route) definition()      {}
func (*Middleware) definition() {}
func (*Layout) definition()     {}
func (*App) definition()        {}
func (*NotFound) definition()   {}
func (*ErrorPage) definition()  {}
