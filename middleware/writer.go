package middleware

import (
	"net/http"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/response"
)

// statusWriter captures the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// outcome is what the rest of the chain produced for a request.
type outcome struct {
	status int
	size   int64
	err    error
}

// observe calls done once the outcome of the chain is known: right away when
// it failed, otherwise after its response has been written. A failed chain is
// reported with the status its error maps to; the error page that renders it
// runs outside the middleware chain.
func observe(resp handler.Response, err error, done func(outcome)) (handler.Response, error) {
	if err != nil {
		done(outcome{status: response.StatusOf(err), err: err})
		return nil, err
	}
	if resp == nil {
		done(outcome{status: http.StatusInternalServerError})
		return nil, nil
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		sw := &statusWriter{ResponseWriter: w}
		werr := resp(sw, r)

		out := outcome{status: sw.status, size: sw.size, err: werr}
		if out.status == 0 {
			out.status = http.StatusOK
			if werr != nil {
				out.status = response.StatusOf(werr)
			}
		}
		done(out)
		return werr
	}, nil
}
