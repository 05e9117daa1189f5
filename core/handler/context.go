package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/fresco/core/route"
)

// Context is the per-request state threaded through middleware, handlers and layouts.
// It delegates all context.Context methods to the request's context.
//
// A Context is owned by the goroutine serving its request and is not safe for
// concurrent use.
type Context struct {
	r       *http.Request
	params  route.Params
	state   map[string]any
	pattern string
	buildID string

	partial      bool
	partialNames []string

	chain    []Middleware
	endpoint HandlerFunc
	cursor   int

	renderer Renderer
}

// ContextOption configures a Context at creation.
type ContextOption func(*Context)

// WithParams sets the matched route parameters.
func WithParams(params route.Params) ContextOption {
	return func(c *Context) {
		c.params = params
	}
}

// WithPattern records the matched route pattern.
func WithPattern(pattern string) ContextOption {
	return func(c *Context) {
		c.pattern = pattern
	}
}

// WithBuildID records the build identifier of the serving route table.
func WithBuildID(id string) ContextOption {
	return func(c *Context) {
		c.buildID = id
	}
}

// WithPartial flags the request as a partial navigation for the named regions.
func WithPartial(names []string) ContextOption {
	return func(c *Context) {
		c.partial = true
		c.partialNames = names
	}
}

// WithChain installs the middleware chain and the endpoint invoked once it is exhausted.
func WithChain(chain []Middleware, endpoint HandlerFunc) ContextOption {
	return func(c *Context) {
		c.chain = chain
		c.endpoint = endpoint
		c.cursor = 0
	}
}

// WithState shares an existing state map with the new context. Error pages use
// it to see what the failed chain stored.
func WithState(state map[string]any) ContextOption {
	return func(c *Context) {
		if state != nil {
			c.state = state
		}
	}
}

// WithRenderer installs the renderer used by Render.
func WithRenderer(r Renderer) ContextOption {
	return func(c *Context) {
		c.renderer = r
	}
}

// NewContext creates a Context for the request.
func NewContext(r *http.Request, opts ...ContextOption) *Context {
	c := &Context{
		r:     r,
		state: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deadline delegates to the request context.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done delegates to the request context.
func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err delegates to the request context.
func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value delegates to the request context.
func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

// SetValue stores a request-scoped value on the underlying request context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// SetContext replaces the context of the underlying request. Values stored
// earlier are kept only if ctx derives from the current request context.
func (c *Context) SetContext(ctx context.Context) {
	if ctx != nil {
		c.r = c.r.WithContext(ctx)
	}
}

// Request returns the HTTP request associated with this context.
func (c *Context) Request() *http.Request {
	return c.r
}

// Param returns the percent-decoded value of the route parameter.
func (c *Context) Param(name string) string {
	return c.params.Get(name)
}

// Params returns all matched route parameters.
func (c *Context) Params() route.Params {
	return c.params
}

// Pattern returns the matched route pattern, or an empty string when no route matched.
func (c *Context) Pattern() string {
	return c.pattern
}

// BuildID returns the build identifier embedded in rendered documents.
func (c *Context) BuildID() string {
	return c.buildID
}

// IsPartial reports whether the request is a partial navigation.
func (c *Context) IsPartial() bool {
	return c.partial
}

// PartialNames returns the region names requested by a partial navigation.
func (c *Context) PartialNames() []string {
	return c.partialNames
}

// State returns the request's shared state. Every middleware, the handler and
// every layout see the same map; it is never copied.
func (c *Context) State() map[string]any {
	return c.state
}

// Set stores a value in the shared state.
func (c *Context) Set(key string, val any) {
	c.state[key] = val
}

// Get returns a value from the shared state.
func (c *Context) Get(key string) any {
	return c.state[key]
}

// Next invokes the remaining middleware chain and, after the last middleware,
// the route endpoint. It returns ErrChainExhausted when called past the endpoint.
func (c *Context) Next() (Response, error) {
	if c.cursor < len(c.chain) {
		mw := c.chain[c.cursor]
		c.cursor++
		return mw(c)
	}
	if c.cursor == len(c.chain) && c.endpoint != nil {
		c.cursor++
		return c.endpoint(c)
	}
	return nil, ErrChainExhausted
}

// Render composes the component with the route's layouts and renders it.
func (c *Context) Render(component templ.Component, opts ...RenderOption) (Response, error) {
	if component == nil {
		return nil, ErrNilComponent
	}
	if c.renderer == nil {
		return nil, ErrNoRenderer
	}

	page := Page{Component: component, Status: http.StatusOK}
	for _, opt := range opts {
		opt(&page)
	}
	return c.renderer.Render(c, page)
}

// StateValue returns a typed value from the shared state.
func StateValue[T any](c *Context, key string) (T, bool) {
	v, ok := c.state[key].(T)
	return v, ok
}
