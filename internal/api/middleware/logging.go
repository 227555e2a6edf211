package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// recorder captures what a handler wrote so access logs and spans can
// report it afterwards.
type recorder struct {
	http.ResponseWriter
	code    int
	written int
}

func (rec *recorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(p []byte) (int, error) {
	if rec.code == 0 {
		rec.code = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(p)
	rec.written += n
	return n, err
}

func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

// status reports 200 for handlers that never wrote anything.
func (rec *recorder) status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

func levelFor(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

// RequestLogging writes one access log line per request through the
// request-scoped logger from CorrelationID, or logger when there is none.
func RequestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			l := zerolog.Ctx(r.Context())
			if l.GetLevel() == zerolog.Disabled {
				l = &logger
			}
			levelFor(l, rec.status()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status()).
				Int("bytes", rec.written).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
