package middleware

import (
	"net/http"
	"strings"

	"github.com/Togather-Foundation/eventos/internal/config"
	"github.com/rs/zerolog"
)

const (
	corsAllowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders  = "Content-Type, Authorization, Accept, X-Request-ID"
	corsExposeHeaders = "X-Request-ID, Retry-After"
	corsMaxAge        = "86400"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Methods":  corsAllowMethods,
	"Access-Control-Allow-Headers":  corsAllowHeaders,
	"Access-Control-Expose-Headers": corsExposeHeaders,
	"Access-Control-Max-Age":        corsMaxAge,
}

// CORS echoes permitted origins and short-circuits preflights with 204.
// Credentials mode stays off; tokens travel in the Authorization header.
func CORS(cfg config.CORSConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[normalizeOrigin(o)] = struct{}{}
	}
	permitted := func(origin string) bool {
		if cfg.AllowAllOrigins {
			return true
		}
		_, ok := origins[normalizeOrigin(origin)]
		return ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if permitted(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				for k, v := range corsHeaders {
					w.Header().Set(k, v)
				}
			} else {
				logger.Warn().Str("origin", origin).Str("method", r.Method).Str("path", r.URL.Path).
					Msg("cors origin rejected")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}
