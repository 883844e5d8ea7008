package net

import (
	"context"
	stderrs "errors"
	"net/http"
	"testing"

	perr "spec11/internal/platform/errors"
)

func TestRequestScopedValues(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" || Principal(ctx) != "" {
		t.Fatal("empty context should have no values")
	}
	if WithRequestID(ctx, "") != ctx || WithPrincipal(ctx, "") != ctx {
		t.Fatal("empty ids should not wrap ctx")
	}

	ctx = WithPrincipal(WithRequestID(ctx, "req-1"), "spec11-trigger")
	if RequestID(ctx) != "req-1" || Principal(ctx) != "spec11-trigger" {
		t.Fatalf("got %q %q", RequestID(ctx), Principal(ctx))
	}
}

func TestError(t *testing.T) {
	status, w := Error(perr.Forbiddenf("invalid trigger token"), "req-2")
	if status != http.StatusForbidden || w.StatusCode != status || w.Status != "Forbidden" {
		t.Fatalf("status = %d %+v", status, w)
	}
	if w.Code != perr.ErrorCodeForbidden || w.Error != "invalid trigger token" || w.RequestID != "req-2" {
		t.Fatalf("wire = %+v", w)
	}

	status, w = Error(stderrs.New("boom"), "")
	if status != http.StatusInternalServerError || w.Error != "boom" {
		t.Fatalf("foreign = %d %+v", status, w)
	}
}
