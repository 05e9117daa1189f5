// Package handler defines the request-handling abstractions shared by the route table,
// the dispatcher and middleware.
//
// # Core Types
//
//	// Response renders HTTP responses
//	type Response func(w http.ResponseWriter, r *http.Request) error
//
//	// Route handler for one HTTP method
//	type HandlerFunc func(ctx *Context) (Response, error)
//
//	// Interceptor with access to the ctx.Next continuation
//	type Middleware func(ctx *Context) (Response, error)
//
//	// Error page handler
//	type ErrorHandler func(ctx *Context, err error) (Response, error)
//
//	// Layout wrapping inner page content
//	type LayoutFunc func(ctx *Context, inner templ.Component) templ.Component
//
// # Middleware
//
// Middleware receives the request context and decides whether to continue:
//
//	func timing(ctx *handler.Context) (handler.Response, error) {
//		start := time.Now()
//		resp, err := ctx.Next() // runs every inner middleware and the handler
//		ctx.Set("elapsed", time.Since(start))
//		return resp, err
//	}
//
// Code before ctx.Next runs root-to-leaf, code after it runs leaf-to-root once the
// whole downstream chain has completed. Returning without calling ctx.Next
// short-circuits every inner middleware and the handler.
//
// # Shared State
//
// Context.State returns one map per request. A value set by an outer middleware is
// visible to inner middleware, the handler and the layouts:
//
//	ctx.Set("order", "1")
//	order, _ := handler.StateValue[string](ctx, "order")
//
// # Rendering
//
// Handlers that want their output wrapped in layouts call Render:
//
//	func show(ctx *handler.Context) (handler.Response, error) {
//		return ctx.Render(views.Post(ctx.Param("slug")))
//	}
//
// The renderer is installed by the dispatcher and also produces partial responses
// when the request is a partial navigation.
package handler
