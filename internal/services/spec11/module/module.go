// Package module wires the spec11 publisher as a modkit.Module
package module

import (
	"spec11/internal/adapters/dataflow"
	"spec11/internal/adapters/notify"
	"spec11/internal/modkit"
	"spec11/internal/modkit/httpkit"
	perr "spec11/internal/platform/errors"

	s11dom "spec11/internal/services/spec11/domain"
	s11http "spec11/internal/services/spec11/http"
	s11repo "spec11/internal/services/spec11/repo"
	s11service "spec11/internal/services/spec11/service"
)

// Ports exported by the spec11 module
type Ports struct {
	Publisher s11dom.PublisherPort
}

// Module is the spec11 publisher mounted at /spec11
type Module struct {
	modkit.Built
	opts  Options
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the module from deps.Cfg; backends missing from deps are config errors
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the module from explicit options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) (*Module, error) {
	snaps, err := snapshotStore(deps, o)
	if err != nil {
		return nil, err
	}
	jobs, err := jobStatus(deps, o)
	if err != nil {
		return nil, err
	}
	notifier, err := buildNotifier(o)
	if err != nil {
		return nil, err
	}

	poller := s11service.NewPoller(jobs, o.DoneMarker, o.FailedMarker)
	m := &Module{
		Built: modkit.Build("spec11", "/spec11", opts...),
		opts:  o,
		ports: Ports{Publisher: s11service.New(poller, snaps, notifier, o.ServiceConfig())},
	}
	auth := s11http.NewTokenAuth(o.TriggerToken)
	m.Routes(func(r httpkit.Router) { s11http.Register(r, m.ports.Publisher, auth) })
	return m, nil
}

func snapshotStore(deps modkit.Deps, o Options) (s11dom.SnapshotStore, error) {
	switch o.Source {
	case SourcePG:
		if deps.PG == nil {
			return nil, perr.InvalidArgf("spec11 source %q requires postgres", o.Source)
		}
		return s11repo.NewPG(deps.PG), nil
	case SourceCH:
		if deps.CH == nil {
			return nil, perr.InvalidArgf("spec11 source %q requires clickhouse", o.Source)
		}
		return s11repo.NewCH(deps.CH), nil
	case SourceFile, "":
		return s11repo.NewFileStore(o.ReportDir), nil
	default:
		return nil, perr.InvalidArgf("unknown spec11 source %q", o.Source)
	}
}

func jobStatus(deps modkit.Deps, o Options) (s11dom.JobStatusProvider, error) {
	switch o.Jobs {
	case JobsPG:
		if deps.PG == nil {
			return nil, perr.InvalidArgf("spec11 jobs %q requires postgres", o.Jobs)
		}
		return s11repo.NewPGJobs(deps.PG), nil
	case JobsDataflow, "":
		if o.DataflowProject == "" {
			return nil, perr.InvalidArgf("spec11 dataflow project is required")
		}
		return dataflow.NewClient(dataflow.Options{
			BaseURL: o.DataflowURL,
			Project: o.DataflowProject,
			Region:  o.DataflowRegion,
			Token:   o.DataflowToken,
			Timeout: o.DataflowTimeout,
		}), nil
	default:
		return nil, perr.InvalidArgf("unknown spec11 jobs source %q", o.Jobs)
	}
}

func buildNotifier(o Options) (s11dom.Notifier, error) {
	switch o.Notifier {
	case NotifierSMTP:
		n, err := notify.NewSMTP(notify.Options{
			Addr:     o.SMTPAddr,
			Username: o.SMTPUser,
			Password: o.SMTPPassword,
			From:     o.From,
			ReplyTo:  o.ReplyTo,
			BCC:      o.BCC,
			AlertTo:  o.AlertTo,
			Registry: o.RegistryName,
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	case NotifierLog, "":
		return notify.NewLog(), nil
	default:
		return nil, perr.InvalidArgf("unknown spec11 notifier %q", o.Notifier)
	}
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Publisher returns the publish port directly for non-HTTP callers
func (m *Module) Publisher() s11dom.PublisherPort { return m.ports.Publisher }

// Options returns the resolved module options
func (m *Module) Options() Options { return m.opts }
