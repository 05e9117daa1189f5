// Package response provides handler.Response constructors for text, HTML, JSON,
// templ components, redirects, structured errors and partial-navigation envelopes.
//
// A response is a function executed by the dispatcher after the middleware chain
// returns:
//
//	func show(ctx *handler.Context) (handler.Response, error) {
//		if ctx.Param("id") == "" {
//			return nil, response.ErrNotFound
//		}
//		return response.JSON(post), nil
//	}
//
// # Errors
//
// HTTPError carries a status, a machine-readable code and a message. Any error
// implementing StatusCode() int is mapped to the matching predefined error by
// AsHTTPError, and ErrorText/ErrorJSON render it:
//
//	return nil, response.ErrForbidden.WithMessage("members only")
//
// # Decorators
//
// WithHeaders, WithCookie, WithCache and WithVary wrap any response:
//
//	return response.WithCache(response.HTML(body), time.Hour), nil
//
// # Partial navigation
//
// Partial and Document are used by the dispatcher's renderer. Both vary on the
// partial-navigation header.
package response
