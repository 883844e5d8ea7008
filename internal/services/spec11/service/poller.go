package service

import (
	"context"

	perr "spec11/internal/platform/errors"
	"spec11/internal/services/spec11/domain"
)

// Default Dataflow terminal markers
const (
	DefaultDoneMarker   = "JOB_STATE_DONE"
	DefaultFailedMarker = "JOB_STATE_FAILED"
)

// Poller classifies the raw job status into a JobState.
// Raw markers stop here; nothing downstream inspects strings
type Poller struct {
	Provider     domain.JobStatusProvider
	DoneMarker   string
	FailedMarker string
}

// NewPoller builds a Poller, falling back to the Dataflow markers when empty
func NewPoller(p domain.JobStatusProvider, done, failed string) *Poller {
	if p == nil {
		panic("spec11.Poller requires a non nil JobStatusProvider")
	}
	if done == "" {
		done = DefaultDoneMarker
	}
	if failed == "" {
		failed = DefaultFailedMarker
	}
	return &Poller{Provider: p, DoneMarker: done, FailedMarker: failed}
}

// Poll queries the provider once; a query failure is a fetch failure
func (p *Poller) Poll(ctx context.Context, jobID string) (domain.JobState, string, error) {
	raw, err := p.Provider.Status(ctx, jobID)
	if err != nil {
		return domain.JobRunning, "", domain.Fail(domain.KindFetchFailure, "poll job status",
			perr.Wrapf(err, perr.CodeOf(err), "job %s status query failed", jobID))
	}
	return p.Classify(raw), raw, nil
}

// Classify maps a raw marker with exact matching
func (p *Poller) Classify(raw string) domain.JobState {
	switch raw {
	case p.DoneMarker:
		return domain.JobDone
	case p.FailedMarker:
		return domain.JobFailed
	default:
		return domain.JobRunning
	}
}
