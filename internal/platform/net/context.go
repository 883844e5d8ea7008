// Package net carries request scoped values and the error envelope shared by
// middleware and handlers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type principalKey struct{}

// RequestID is the id assigned by the RequestID middleware, empty outside a request
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithRequestID sets the request id the way the RequestID middleware does
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// WithPrincipal records who authenticated the request
func WithPrincipal(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, id)
}

// Principal returns the id set by WithPrincipal
func Principal(ctx context.Context) string {
	id, _ := ctx.Value(principalKey{}).(string)
	return id
}
