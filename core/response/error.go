package response

import (
	"net/http"

	"github.com/dmitrymomot/fresco/core/handler"
)

// Error returns a response that propagates err when executed. The dispatcher
// treats it like an error returned by the handler.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
