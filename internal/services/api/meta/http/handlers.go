// Package http serves the /meta endpoints: liveness, readiness, build info
// and the active publisher setup
package http

import (
	"context"
	"net/http"
	"time"

	"spec11/internal/core/version"
	"spec11/internal/modkit/httpkit"
	"spec11/internal/platform/store"
)

// Deps for the meta routes. PG and CH are nil when not configured and
// count as ok only if they can be pinged
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	Publisher   func() PublisherResponse
}

// readiness states, per check and overall
const (
	StatusOK       = "ok"
	StatusFail     = "fail"
	StatusSkipped  = "skipped"
	StatusUnknown  = "unknown"
	StatusDegraded = "degraded"
)

const probeTimeout = 2 * time.Second

// Register mounts the meta routes on r
func Register(r httpkit.Router, d Deps) {
	h := &handlers{Deps: d, now: time.Now}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/publisher", h.publisher)
}

type handlers struct {
	Deps
	now func() time.Time
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// HealthResponse is returned by /meta/health
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"spec11-api"`
	Started string `json:"started" example:"2024-05-10T06:00:00Z"`
	Now     string `json:"now"     example:"2024-05-10T06:05:00Z"`
}

// ReadyCheck is one backend probe
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is returned by /meta/ready
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2024-05-10T06:05:00Z"`
}

// ServiceResponse is returned by /meta/service; Uptime is in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"spec11-api"`
	Started string `json:"started" example:"2024-05-10T06:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// PublisherResponse is returned by /meta/publisher
type PublisherResponse struct {
	Registry       string `json:"registry"        example:"Example Registry"`
	Source         string `json:"source"          example:"file"`
	Jobs           string `json:"jobs"            example:"dataflow"`
	Notifier       string `json:"notifier"        example:"smtp"`
	LookbackMonths int    `json:"lookback_months" example:"1"`
	MonthlyDay     int    `json:"monthly_day"     example:"2"`
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(h.now())}, nil
}

// @Summary Readiness of the configured backends
// @Description A failed ping fails readiness, a backend that cannot be pinged degrades it
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := ReadyResponse{Status: StatusOK, Now: stamp(h.now())}
	for _, c := range []ReadyCheck{probe(ctx, "pg", h.PG), probe(ctx, "ch", h.CH)} {
		switch {
		case c.Status == StatusFail:
			resp.Status = StatusFail
		case c.Status == StatusUnknown && resp.Status == StatusOK:
			resp.Status = StatusDegraded
		}
		resp.Checks = append(resp.Checks, c)
	}
	return resp, nil
}

func probe(ctx context.Context, name string, backend any) ReadyCheck {
	c := ReadyCheck{Name: name, Status: StatusSkipped}
	if backend == nil {
		return c
	}
	p, ok := backend.(store.Pinger)
	if !ok {
		c.Status = StatusUnknown
		return c
	}
	if err := p.Ping(ctx); err != nil {
		c.Status, c.Error = StatusFail, err.Error()
		return c
	}
	c.Status = StatusOK
	return c
}

// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) {
	return version.Info(h.ServiceName), nil
}

// @Summary Service uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.ServiceName,
		Started: stamp(h.StartedAt),
		Uptime:  int64(h.now().Sub(h.StartedAt) / time.Second),
	}, nil
}

// @Summary Active spec11 publisher setup
// @Tags Meta
// @Produce json
// @Success 200 {object} PublisherResponse
// @Router /meta/publisher [get]
func (h *handlers) publisher(*http.Request) (any, error) {
	if h.Publisher == nil {
		return PublisherResponse{}, nil
	}
	return h.Publisher(), nil
}
