// Package middleware wraps chi and go-chi/cors middleware and adds the in house ones
package middleware

import (
	"net/http"
	"time"

	"spec11/internal/platform/logger"
	pnet "spec11/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLog writes one zerolog line per request. Requests at or over slow log at warn; 0 disables that
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			took := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.Named("http")
			ev := log.Info()
			if slow > 0 && took >= slow {
				ev = log.Warn()
			}
			ev.Str("request_id", pnet.RequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("took", took).
				Msg("request done")
		})
	}
}
