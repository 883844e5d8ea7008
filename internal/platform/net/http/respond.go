// Package http is the server side HTTP layer: a chi backed router, the response
// envelope and return style handlers
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "spec11/internal/platform/errors"
	pnet "spec11/internal/platform/net"
)

// Envelope wraps every JSON body the API writes
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return style handlers produce.
// An error Body takes its status from the error code
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a return style handler
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) { h(r).write(w, r) }
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	env := Envelope{RequestID: pnet.RequestID(r.Context())}

	switch body := resp.Body.(type) {
	case error:
		status = perr.HTTPStatus(body)
		wire := perr.WireFrom(body)
		env.Code, env.Error = wire.Code, wire.Message
	default:
		// 204 and 304 must not carry a body
		if status == stdhttp.StatusNoContent || status == stdhttp.StatusNotModified {
			w.WriteHeader(status)
			return
		}
		env.Data = body
	}
	env.StatusCode, env.Status = status, stdhttp.StatusText(status)
	JSON(w, status, env)
}

func OK(data any) Response    { return Response{Status: stdhttp.StatusOK, Body: data} }
func NoContent() Response     { return Response{Status: stdhttp.StatusNoContent} }
func NotModified() Response   { return Response{Status: stdhttp.StatusNotModified} }
func Error(err error) Response { return Response{Body: err} }
