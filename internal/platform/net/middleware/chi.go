package middleware

import (
	"net/http"
	"time"

	pstrings "spec11/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware is the stdlib middleware shape every helper here returns
type Middleware = func(http.Handler) http.Handler

// RequestID honours an incoming X-Request-ID or mints one
func RequestID() Middleware { return chimw.RequestID }

// RealIP rewrites RemoteAddr from X-Forwarded-For and X-Real-IP
func RealIP() Middleware { return chimw.RealIP }

func NoCache() Middleware { return chimw.NoCache }

func StripSlashes() Middleware { return chimw.StripSlashes }

// Timeout cancels the request context after d
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Compress gzips and deflates responses at level
func Compress(level int) Middleware { return chimw.Compress(level) }

// Heartbeat answers GET path with 200 before routing, for load balancer checks
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// CORSOptions is the part of go-chi/cors the API exposes
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS applies go-chi/cors; empty method and header lists get the defaults the publish trigger needs
func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
		MaxAge:         o.MaxAge,
	})
}
