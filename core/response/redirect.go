package response

import (
	"net/http"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/partial"
)

// Redirect creates a 302 Found (temporary redirect) response.
func Redirect(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusFound)
}

// RedirectPermanent creates a 301 Moved Permanently response.
func RedirectPermanent(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusMovedPermanently)
}

// RedirectSeeOther creates a 303 See Other response, typically after a POST.
func RedirectSeeOther(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusSeeOther)
}

// RedirectTemporary creates a 307 Temporary Redirect response. The request
// method is preserved.
func RedirectTemporary(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusTemporaryRedirect)
}

// RedirectPermanentPreserve creates a 308 Permanent Redirect response. The
// request method is preserved.
func RedirectPermanentPreserve(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusPermanentRedirect)
}

// RedirectWithStatus creates a redirect with a custom status code. Statuses
// outside the 3xx range fall back to 302.
//
// Partial navigations are redirected the same way. Their responses vary on the
// partial header so caches keep the two forms apart.
func RedirectWithStatus(url string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status < 300 || status >= 400 {
			status = http.StatusFound
		}
		if r.Header.Get(partial.Header) != "" {
			w.Header().Set("Vary", partial.Header)
		}
		http.Redirect(w, r, url, status)
		return nil
	}
}
