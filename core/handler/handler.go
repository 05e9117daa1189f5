package handler

import (
	"net/http"

	"github.com/a-h/templ"
)

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a matched route for one HTTP method.
type HandlerFunc func(ctx *Context) (Response, error)

// Middleware intercepts a request. Calling ctx.Next runs the rest of the chain
// and returns its response; returning without calling it short-circuits the chain.
type Middleware func(ctx *Context) (Response, error)

// ErrorHandler renders a response for an error raised while handling a request.
type ErrorHandler func(ctx *Context, err error) (Response, error)

// LayoutFunc wraps the inner content of a page.
type LayoutFunc func(ctx *Context, inner templ.Component) templ.Component

// Page is a component a handler asked to render.
type Page struct {
	Component templ.Component
	Status    int
}

// RenderOption configures a Page.
type RenderOption func(*Page)

// WithStatus sets the HTTP status code of the rendered page.
func WithStatus(status int) RenderOption {
	return func(p *Page) {
		if status > 0 {
			p.Status = status
		}
	}
}

// Renderer turns a page into a response. The dispatcher installs one per request
// so that layouts, partial regions and head elements are applied consistently.
type Renderer interface {
	Render(ctx *Context, page Page) (Response, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx *Context, page Page) (Response, error)

// Render calls f(ctx, page).
func (f RendererFunc) Render(ctx *Context, page Page) (Response, error) {
	return f(ctx, page)
}
