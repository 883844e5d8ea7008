package module

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spec11/internal/modkit"
	modreg "spec11/internal/modkit/module"
	"spec11/internal/platform/config"
	perr "spec11/internal/platform/errors"
	phttp "spec11/internal/platform/net/http"
	kit "spec11/internal/platform/testkit"
	s11dom "spec11/internal/services/spec11/domain"
	"spec11/internal/services/spec11/service"

	"github.com/go-chi/chi/v5"
)

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.Source != SourceFile || o.Jobs != JobsDataflow || o.Notifier != NotifierLog {
		t.Fatalf("selectors = %q %q %q", o.Source, o.Jobs, o.Notifier)
	}
	if o.LookbackMonths != 1 || o.RegistryName != "Registry" {
		t.Fatalf("policy = %+v", o)
	}
	if o.DoneMarker != service.DefaultDoneMarker || o.FailedMarker != service.DefaultFailedMarker {
		t.Fatalf("markers = %q %q", o.DoneMarker, o.FailedMarker)
	}
	if o.DataflowTimeout != 10*time.Second || o.DataflowRegion != "us-east1" {
		t.Fatalf("dataflow = %+v", o)
	}
}

func TestFromConfig_Env(t *testing.T) {
	t.Setenv("CORE_SPEC11_REGISTRY_NAME", "Example Registry")
	t.Setenv("CORE_SPEC11_LOOKBACK_MONTHS", "2")
	t.Setenv("CORE_SPEC11_SOURCE", "PG")
	t.Setenv("CORE_SPEC11_JOBS", "pg")
	t.Setenv("CORE_SPEC11_NOTIFIER", "smtp")
	t.Setenv("CORE_SPEC11_ALERT_TO", "ops@x, oncall@x")
	t.Setenv("CORE_SPEC11_DONE_MARKER", "SUCCEEDED")

	o := FromConfig(config.New())
	if o.Source != SourcePG || o.Jobs != JobsPG || o.Notifier != NotifierSMTP {
		t.Fatalf("selectors = %q %q %q", o.Source, o.Jobs, o.Notifier)
	}
	if len(o.AlertTo) != 2 || o.AlertTo[1] != "oncall@x" {
		t.Fatalf("alert to = %v", o.AlertTo)
	}
	sc := o.ServiceConfig()
	if sc.RegistryName != "Example Registry" || sc.LookbackMonths != 2 || o.DoneMarker != "SUCCEEDED" {
		t.Fatalf("service config = %+v", sc)
	}
}

func TestFromConfig_InvalidEnumPanics(t *testing.T) {
	t.Setenv("CORE_SPEC11_SOURCE", "s3")
	kit.MustPanic(t, func() { _ = FromConfig(config.New()) })
}

func fileOpts(t *testing.T) Options {
	return Options{
		RegistryName:    "Example Registry",
		LookbackMonths:  1,
		Source:          SourceFile,
		ReportDir:       t.TempDir(),
		Jobs:            JobsDataflow,
		DoneMarker:      service.DefaultDoneMarker,
		FailedMarker:    service.DefaultFailedMarker,
		DataflowProject: "proj",
		Notifier:        NotifierLog,
	}
}

func TestNewWithOptions_MissingBackends(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Options)
	}{
		{"pg source without pg", func(o *Options) { o.Source = SourcePG }},
		{"ch source without ch", func(o *Options) { o.Source = SourceCH }},
		{"pg jobs without pg", func(o *Options) { o.Jobs = JobsPG }},
		{"dataflow without project", func(o *Options) { o.DataflowProject = "" }},
		{"smtp without from", func(o *Options) { o.Notifier = NotifierSMTP; o.SMTPAddr = "relay:25" }},
		{"unknown notifier", func(o *Options) { o.Notifier = "pigeon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := fileOpts(t)
			tc.edit(&o)
			if _, err := NewWithOptions(modkit.Deps{}, o); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestModule_WiresPublisherAndRoutes(t *testing.T) {
	modreg.Reset()
	t.Cleanup(modreg.Reset)

	m, err := NewWithOptions(modkit.Deps{}, fileOpts(t))
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	if m.Name() != "spec11" || m.Prefix() != "/spec11" {
		t.Fatalf("name=%q prefix=%q", m.Name(), m.Prefix())
	}
	if m.Publisher() == nil {
		t.Fatal("publisher not wired")
	}

	modreg.Register(m.Name(), m.Ports())
	pub, ok := modreg.Lookup[s11dom.PublisherPort]("spec11")
	if !ok || pub == nil {
		t.Fatal("ports not registered")
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/spec11/publish", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("route not mounted, code = %d", rec.Code)
	}
}

func TestModule_SMTPNotifier(t *testing.T) {
	o := fileOpts(t)
	o.Notifier = NotifierSMTP
	o.SMTPAddr = "relay:25"
	o.From = "abuse@registry.example"
	m, err := NewWithOptions(modkit.Deps{}, o)
	if err != nil || m.Options().Notifier != NotifierSMTP {
		t.Fatalf("err=%v", err)
	}
}
