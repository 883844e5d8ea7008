// Package httpkit is what modules import to mount routes.
// It re-exports the platform http types and adds mounting helpers
package httpkit

import (
	"net/http"

	phttp "spec11/internal/platform/net/http"
)

type (
	Envelope = phttp.Envelope
	Response = phttp.Response
	Handler  = phttp.Handler
	Router   = phttp.Router
)

func OK(data any) Response     { return phttp.OK(data) }
func NoContent() Response      { return phttp.NoContent() }
func NotModified() Response    { return phttp.NotModified() }
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a value returning function. A returned Response is written as is,
// anything else is wrapped in a 200
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}

// Get mounts fn under GET
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }

// Post mounts fn under POST
func Post(r Router, path string, fn func(*http.Request) (any, error)) { r.Post(path, Call(fn)) }
