package http

import (
	"crypto/subtle"
	stdhttp "net/http"

	"spec11/internal/modkit/httpkit"
	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/net/middleware"
)

// TriggerPrincipal is the principal stamped on requests that presented the trigger token
const TriggerPrincipal = "spec11-trigger"

// TokenAuth accepts requests carrying the shared trigger token as a bearer token
type TokenAuth struct {
	token []byte
}

var _ middleware.AuthPort = (*TokenAuth)(nil)

// NewTokenAuth returns nil for an empty token so the route stays open
func NewTokenAuth(token string) *TokenAuth {
	if token == "" {
		return nil
	}
	return &TokenAuth{token: []byte(token)}
}

// Parse implements middleware.AuthPort
func (a *TokenAuth) Parse(r *stdhttp.Request) (string, error) {
	raw, err := httpkit.JWT(r)
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(raw), a.token) != 1 {
		return "", perr.Forbiddenf("invalid trigger token")
	}
	return TriggerPrincipal, nil
}
