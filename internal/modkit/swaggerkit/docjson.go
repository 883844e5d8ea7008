//go:build swag

package swaggerkit

// The docs package is generated by `go generate ./cmd/spec11-api` and is not
// checked in; without the swag tag docjson_nogen.go serves a skeleton

import docs "spec11/internal/services/api/docs"

var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }
