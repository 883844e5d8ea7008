package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "spec11/internal/platform/errors"
	phttp "spec11/internal/platform/net/http"
	kit "spec11/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type staticAuth struct{ err error }

func (a staticAuth) Parse(*http.Request) (string, error) { return "caller", a.err }

func do(mux http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCall(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	Get(r, "/value", func(*http.Request) (any, error) { return map[string]string{"a": "1"}, nil })
	Get(r, "/resp", func(*http.Request) (any, error) { return NotModified(), nil })
	Post(r, "/err", func(*http.Request) (any, error) { return nil, errors.New("nah") })

	if rec := do(mux, http.MethodGet, "/value", ""); rec.Code != 200 {
		t.Fatalf("value = %d", rec.Code)
	} else {
		kit.MustContain(t, rec.Body.String(), `"a":"1"`)
	}
	if rec := do(mux, http.MethodGet, "/resp", ""); rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("resp = %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(mux, http.MethodPost, "/err", ""); rec.Code != 500 {
		t.Fatalf("err = %d", rec.Code)
	}
}

func TestJWT(t *testing.T) {
	ok := map[string]string{
		"Bearer abc":      "abc",
		"bearer xyz":      "xyz",
		"BeArEr   spaced ": "spaced",
	}
	for h, want := range ok {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		if got, err := JWT(req); err != nil || got != want {
			t.Fatalf("JWT(%q) = %q, %v", h, got, err)
		}
	}
	for _, h := range []string{"", "Bearer", "Bearer   ", "Token abc", "Bearerabc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		if _, err := JWT(req); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			t.Fatalf("JWT(%q) err = %v", h, err)
		}
	}
}

func TestProtected(t *testing.T) {
	for _, tc := range []struct {
		name string
		auth staticAuth
		want int
	}{
		{"accepted", staticAuth{}, 200},
		{"refused", staticAuth{err: perr.Forbiddenf("no")}, http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mux := chi.NewRouter()
			Protected(phttp.AdaptChi(mux), tc.auth, func(r Router) {
				Get(r, "/who", func(r *http.Request) (any, error) { return Principal(r) })
			})
			rec := do(mux, http.MethodGet, "/who", "")
			if rec.Code != tc.want {
				t.Fatalf("code = %d (%s)", rec.Code, rec.Body.String())
			}
			if tc.want == 200 {
				kit.MustContain(t, rec.Body.String(), `"data":"caller"`)
			}
		})
	}
}

func TestPrincipal_Missing(t *testing.T) {
	if _, err := Principal(httptest.NewRequest(http.MethodGet, "/", nil)); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("err = %v", err)
	}
}

func TestMountAPIV1_CommonStack(t *testing.T) {
	mux := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(mux), CommonStack(), func(api Router) {
		MountUnder(api, "/spec11", nil, func(s Router) {
			Get(s, "/ping", func(*http.Request) (any, error) { return "pong", nil })
		})
	})

	rec := do(mux, http.MethodGet, "/api/v1/spec11/ping/", "")
	if rec.Code != 200 {
		t.Fatalf("ping = %d", rec.Code)
	}
	kit.MustContain(t, rec.Body.String(), `"data":"pong"`)
	kit.MustContain(t, rec.Body.String(), `"request_id":"`)
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatal("no-cache headers missing")
	}
}
