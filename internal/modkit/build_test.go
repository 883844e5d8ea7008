package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"spec11/internal/modkit/httpkit"
	phttp "spec11/internal/platform/net/http"
	kit "spec11/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type demo struct {
	Built
}

func (d *demo) Ports() any { return nil }

var _ Module = (*demo)(nil)

func newDemo(opts ...Option) *demo {
	d := &demo{Built: Build("demo", "/demo", opts...)}
	d.Routes(func(r httpkit.Router) {
		httpkit.Get(r, "/own", func(*http.Request) (any, error) { return "own", nil })
	})
	return d
}

func hit(mux http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBuilt_MountRoutes(t *testing.T) {
	var seen int
	count := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen++
			next.ServeHTTP(w, r)
		})
	}
	d := newDemo(
		WithPrefix("demo2/"),
		WithMiddlewares(count),
		WithRegister(func(r httpkit.Router) {
			httpkit.Get(r, "/extra", func(*http.Request) (any, error) { return "extra", nil })
		}),
	)

	mux := chi.NewRouter()
	d.MountRoutes(phttp.AdaptChi(mux))

	for _, p := range []string{"/demo2/own", "/demo2/extra"} {
		if rec := hit(mux, p); rec.Code != 200 {
			t.Fatalf("%s = %d", p, rec.Code)
		}
	}
	if rec := hit(mux, "/demo/own"); rec.Code != http.StatusNotFound {
		t.Fatalf("default prefix still mounted: %d", rec.Code)
	}
	if seen != 2 {
		t.Fatalf("middleware ran %d times", seen)
	}
	if d.Name() != "demo" || d.Prefix() != "/demo2" {
		t.Fatalf("name=%q prefix=%q", d.Name(), d.Prefix())
	}
}

func TestBuilt_RequiresNameAndPrefix(t *testing.T) {
	kit.MustPanic(t, func() { newDemo(WithName(" ")).Name() })
	kit.MustPanic(t, func() { newDemo(WithPrefix("/")).Prefix() })
}
