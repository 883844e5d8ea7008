// Package module mounts the meta endpoints at /meta
package module

import (
	"time"

	"spec11/internal/modkit"
	"spec11/internal/modkit/httpkit"

	metahttp "spec11/internal/services/api/meta/http"
)

// Info is what meta reports about the running service
type Info struct {
	ServiceName string
	Publisher   func() metahttp.PublisherResponse
}

// Module serves /meta; it exports no ports
type Module struct {
	modkit.Built
	startedAt time.Time
}

// New builds the module. Readiness probes whichever of deps.PG and deps.CH are set
func New(deps modkit.Deps, info Info, opts ...modkit.Option) *Module {
	m := &Module{Built: modkit.Build("meta", "/meta", opts...), startedAt: time.Now()}

	md := metahttp.Deps{ServiceName: info.ServiceName, StartedAt: m.startedAt, Publisher: info.Publisher}
	// a nil TxRunner stored in an interface would not read as absent
	if deps.PG != nil {
		md.PG = deps.PG
	}
	if deps.CH != nil {
		md.CH = deps.CH
	}
	m.Routes(func(r httpkit.Router) { metahttp.Register(r, md) })
	return m
}

func (m *Module) Ports() any { return nil }
