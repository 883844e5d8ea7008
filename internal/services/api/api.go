// Package api assembles the spec11 HTTP API: meta and spec11 modules under
// /api/v1, swagger and the profiler at the root
package api

import (
	"spec11/internal/modkit"
	"spec11/internal/modkit/httpkit"
	"spec11/internal/modkit/module"
	"spec11/internal/modkit/swaggerkit"
	"spec11/internal/platform/config"
	"spec11/internal/platform/logger"
	phttp "spec11/internal/platform/net/http"
	"spec11/internal/platform/store"

	metahttp "spec11/internal/services/api/meta/http"
	metamod "spec11/internal/services/api/meta/module"
	s11dom "spec11/internal/services/spec11/domain"
	spec11mod "spec11/internal/services/spec11/module"
)

// Options for Mount
type Options struct {
	ServiceName    string
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount builds every module and mounts it on r.
// It fails when the spec11 module cannot be built from config
func Mount(r phttp.Router, opt Options) error {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG, deps.CH = opt.Store.PG, opt.Store.CH
	}

	s11, err := spec11mod.New(deps)
	if err != nil {
		return err
	}
	mods := []modkit.Module{
		metamod.New(deps, metamod.Info{ServiceName: opt.ServiceName, Publisher: publisherInfo(s11.Options())}),
		s11,
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return nil
}

func publisherInfo(o spec11mod.Options) func() metahttp.PublisherResponse {
	return func() metahttp.PublisherResponse {
		return metahttp.PublisherResponse{
			Registry:       o.RegistryName,
			Source:         o.Source,
			Jobs:           o.Jobs,
			Notifier:       o.Notifier,
			LookbackMonths: o.LookbackMonths,
			MonthlyDay:     s11dom.MonthlyReportDay,
		}
	}
}
