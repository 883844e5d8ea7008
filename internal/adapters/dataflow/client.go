// Package dataflow reads batch job state from the Dataflow REST API
package dataflow

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/logger"
)

const (
	baseURLDefault = "https://dataflow.googleapis.com"
	defaultTimeout = 10 * time.Second
	defaultUA      = "spec11-publisher"
	defaultRegion  = "us-east1"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Project   string
	Region    string
	UserAgent string
	Timeout   time.Duration

	// Token is sent as a bearer token; empty means unauthenticated (emulators, tests)
	Token string
}

// Client fetches job state; it never retries, the caller's trigger does
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with defaults applied
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Region == "" {
		o.Region = defaultRegion
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("dataflow"),
		now:  time.Now,
	}
}

// job is the subset of the Dataflow Job resource we read
type job struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrentState string `json:"currentState"`
}

// JobPath returns the REST path of jobID
func (c *Client) JobPath(jobID string) string {
	return "/v1b3/projects/" + url.PathEscape(c.opts.Project) +
		"/locations/" + url.PathEscape(c.opts.Region) +
		"/jobs/" + url.PathEscape(jobID)
}

// Status returns the raw currentState marker of jobID
func (c *Client) Status(ctx context.Context, jobID string) (string, error) {
	if c.opts.Project == "" {
		return "", perr.InvalidArgf("dataflow project not configured")
	}
	if strings.TrimSpace(jobID) == "" {
		return "", perr.InvalidArgf("dataflow job id is empty")
	}

	path := c.JobPath(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "dataflow new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "dataflow get job %s failed", jobID)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("dataflow http response")

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", perr.NotFoundf("dataflow job %s not found", jobID)
	case resp.StatusCode == http.StatusUnauthorized:
		return "", perr.Unauthorizedf("dataflow rejected credentials")
	case resp.StatusCode == http.StatusForbidden:
		return "", perr.Forbiddenf("dataflow denied access to job %s", jobID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", perr.Newf(perr.ErrorCodeTooManyRequests, "dataflow rate limited")
	case resp.StatusCode >= 500:
		return "", perr.Unavailablef("dataflow server error %d", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", perr.Newf(perr.ErrorCodeUnknown, "dataflow unexpected status %d body %s", resp.StatusCode, string(body))
	}

	var j job
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&j); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "dataflow job %s decode failed", jobID)
	}
	if j.CurrentState == "" {
		return "", perr.JSONErrf("dataflow job %s has no currentState", jobID)
	}
	return j.CurrentState, nil
}
