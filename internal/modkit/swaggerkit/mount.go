// Package swaggerkit serves the Swagger UI and the OpenAPI document
package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	perr "spec11/internal/platform/errors"
	phttp "spec11/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount the UI at /api/docs/ and the document at /api/docs/doc.json when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON)
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

func serveDocJSON(w http.ResponseWriter, _ *http.Request) {
	spec, err := shape(docReader(), "/api/v1")
	if err != nil {
		status, body := perr.HTTP(perr.Wrapf(err, perr.ErrorCodeUnknown, "swagger document"))
		phttp.JSON(w, status, body)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	phttp.JSON(w, http.StatusOK, spec)
}

// shape lifts the generated swag output to OAS 3.0.3, points servers at base
// and gives every operation 400 and 500 responses in the error envelope
func shape(raw, base string) (map[string]any, error) {
	var spec map[string]any
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, err
	}

	// swag emits 2.0 and the UI does not render 3.1
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": base}}
	}

	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status_code": map[string]any{"type": "integer"},
				"status":      map[string]any{"type": "string"},
				"code":        map[string]any{"type": "integer"},
				"error":       map[string]any{"type": "string"},
				"request_id":  map[string]any{"type": "string"},
			},
			"required": []any{"status_code", "status"},
		}
	}

	defaults := map[string]string{"400": "Bad Request", "500": "Internal Server Error"}
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, _ := p.(map[string]any)
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			for code, desc := range defaults {
				if _, ok := responses[code]; ok {
					continue
				}
				responses[code] = map[string]any{
					"description": desc,
					"content": map[string]any{"application/json": map[string]any{
						"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
					}},
				}
			}
		}
	}
	return spec, nil
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
