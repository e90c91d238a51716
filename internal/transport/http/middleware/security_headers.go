package middleware

import "net/http"

// apiHeaders suit a JSON and PDF API. Evaluation records are personal data,
// so nothing is cacheable or embeddable.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecureHeaders adds apiHeaders to every response, plus HSTS when isProd.
func SecureHeaders(isProd bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			for _, kv := range apiHeaders {
				headers.Set(kv[0], kv[1])
			}
			if isProd {
				headers.Set("Strict-Transport-Security", hstsValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}
