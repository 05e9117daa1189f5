package response

import (
	"net/http"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/partial"
)

// Partial writes a partial-navigation envelope. A zero status means 200.
func Partial(env *partial.Envelope, status int) handler.Response {
	if env == nil {
		return nil
	}
	if status == 0 {
		status = http.StatusOK
	}
	return WithVary(encodeJSON(env, partial.ContentType, status), partial.Header)
}

// Document writes a rendered HTML document. A zero status means 200.
func Document(doc []byte, status int) handler.Response {
	return WithVary(body(doc, contentTypeHTML, status), partial.Header)
}
