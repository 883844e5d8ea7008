package httpkit

import (
	"net/http"
	"strings"

	perr "spec11/internal/platform/errors"
	pnet "spec11/internal/platform/net"
)

// JWT returns the raw bearer token from the Authorization header.
// The scheme is matched case insensitively
func JWT(r *http.Request) (string, error) {
	scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}

// Principal is who the auth middleware let through
func Principal(r *http.Request) (string, error) {
	p := pnet.Principal(r.Context())
	if p == "" {
		return "", perr.Unauthorizedf("unauthenticated")
	}
	return p, nil
}
