// Package fsroute builds a route table from a hierarchical namespace of definitions
// supplied by a file system or module loader.
//
// Keys are slash-separated paths without extension. Directory nesting is both URL
// nesting and the inheritance scope of middleware and layouts:
//
//	index                   /
//	about                   /about
//	blog/index              /blog
//	blog/[slug]             /blog/:slug
//	docs/[...path]          /docs/:path*
//	shop/[[page]]           /shop/:page?
//	(marketing)/pricing     /pricing, scoped under (marketing)
//
// Names starting with '_' are special files, at most one of each per directory:
//
//	_middleware   *Middleware, applies root to leaf
//	_layout       *Layout, wraps pages innermost first
//	_404          *NotFound, for unmatched paths under the directory URL
//	_500          *ErrorPage, for errors raised by routes under the directory
//	_app          *App, outermost wrapper, root only
//
// Build is deterministic: keys are processed in lexicographic order and routes are
// stably sorted by specificity, so equally specific routes keep that order.
// Two routes resolving to the same pattern, ignoring parameter names and groups,
// fail the build with a *ConflictError naming both keys.
//
//	table, err := fsroute.Build(fsroute.Namespace{
//		"index":         &fsroute.Route{Handlers: map[string]handler.HandlerFunc{"GET": home}},
//		"blog/[slug]":   &fsroute.Route{Handlers: map[string]handler.HandlerFunc{"GET": post}},
//		"blog/_layout":  &fsroute.Layout{Render: blogLayout},
//		"_middleware":   &fsroute.Middleware{Handlers: []handler.Middleware{auth}},
//	})
package fsroute
