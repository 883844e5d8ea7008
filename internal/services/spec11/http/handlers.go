// Package http provides the spec11 publish action
package http

import (
	stdhttp "net/http"

	"spec11/internal/modkit/httpkit"
	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/net/http/bind"
	"spec11/internal/services/spec11/domain"
)

// Register mounts the publish endpoint on the given router.
// A non nil auth puts the endpoint behind bearer auth
func Register(r httpkit.Router, p domain.PublisherPort, auth *TokenAuth) {
	h := &handlers{pub: p}

	mount := func(rr httpkit.Router) {
		// one publish decision per call; the scheduler retries on 304
		rr.Post("/publish", httpkit.Handle(h.publish))
	}
	if auth == nil {
		mount(r)
		return
	}
	httpkit.Protected(r, auth, mount)
}

type handlers struct{ pub domain.PublisherPort }

var bodyOpts = bind.JSONOptions{MaxBytes: 64 << 10, DisallowUnknown: true, AllowEmptyBody: true}

// swagger:route POST /spec11/publish Spec11 spec11Publish
// @Summary Publish the spec11 report for a date once the batch job finished
// @Description Body or query parameters jobId and date. 200 report sent, 204 failure alerted, 304 job still running, 500 unhandled error.
// @Tags Spec11
// @Accept json
// @Produce json
// @Param payload body domain.PublishInput false "Publish request"
// @Param jobId query string false "Batch job id"
// @Param date query string false "Report date YYYY-MM-DD"
// @Success 200 {object} domain.PublishOutput "report sent"
// @Success 204 "handled failure, alert sent"
// @Success 304 "job not finished, retry later"
// @Security BearerAuth
// @Failure 400 {object} httpkit.Envelope "bad input"
// @Failure 401 {object} httpkit.Envelope "missing trigger token"
// @Failure 403 {object} httpkit.Envelope "wrong trigger token"
// @Failure 500 {object} httpkit.Envelope "unhandled error"
// @Router /spec11/publish [post]
func (h *handlers) publish(r *stdhttp.Request) httpkit.Response {
	in, err := readInput(r)
	if err != nil {
		return httpkit.Error(err)
	}
	date, err := domain.ParseDay(in.Date)
	if err != nil {
		return httpkit.Error(perr.Newf(perr.ErrorCodeValidation, "date must be YYYY-MM-DD, got %q", in.Date))
	}
	return Respond(h.pub.Publish(r.Context(), in.JobID, date))
}

// readInput takes the JSON body when present and falls back to the jobId and date query parameters
func readInput(r *stdhttp.Request) (domain.PublishInput, error) {
	in, err := bind.ParseJSON[domain.PublishInput](r, bodyOpts)
	if err != nil {
		return in, err
	}
	if in.JobID != "" || in.Date != "" {
		return in, nil
	}

	q := r.URL.Query()
	in = domain.PublishInput{JobID: q.Get("jobId"), Date: q.Get("date")}
	return in, bind.Validate(in)
}

// Respond maps a publish result onto the status contract of the trigger
func Respond(res domain.Result) httpkit.Response {
	switch res.Signal {
	case domain.SignalSuccess:
		return httpkit.OK(res.Output())
	case domain.SignalHandledFailure:
		return httpkit.NoContent()
	case domain.SignalRetryLater:
		return httpkit.NotModified()
	default:
		return httpkit.Error(perr.Newf(perr.ErrorCodeUnknown, "Template launch failed: %s", res.Detail()))
	}
}
