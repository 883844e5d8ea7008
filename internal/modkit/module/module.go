// Package module is the contract API modules implement and the lookups used
// to reach a module's ports
package module

import phttp "spec11/internal/platform/net/http"

// Module mounts routes and exposes ports for other modules and commands
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}
