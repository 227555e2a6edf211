package middleware

import "net/http"

const hstsValue = "max-age=31536000; includeSubDomains"

var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders locks down responses for browsers. With hsts set,
// Strict-Transport-Security is added to requests that arrived over HTTPS,
// directly or through a proxy.
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, kv := range apiHeaders {
				w.Header().Set(kv[0], kv[1])
			}
			if hsts && schemeFromRequest(r) == "https" {
				w.Header().Set("Strict-Transport-Security", hstsValue)
			}
			next.ServeHTTP(w, r)
		})
	}
}
