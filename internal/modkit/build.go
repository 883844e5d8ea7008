package modkit

import (
	"net/http"

	"spec11/internal/modkit/httpkit"
	pstrings "spec11/internal/platform/strings"
)

// Option adjusts how a module mounts
type Option func(*Built)

// WithName overrides the module name
func WithName(name string) Option { return func(b *Built) { b.name = name } }

// WithPrefix overrides the mount prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.prefix = prefix } }

// WithMiddlewares adds middleware to the module's subrouter
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.mws = append(b.mws, mw...) }
}

// WithRegister adds routes after the module's own
func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) { b.extra = append(b.extra, fn) }
}

// Built is embedded by modules. It supplies Name, Prefix and MountRoutes;
// the module supplies its routes with Routes
type Built struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	routes func(httpkit.Router)
	extra  []func(httpkit.Router)
}

// Build applies defaults first, then opts
func Build(name, prefix string, opts ...Option) Built {
	b := Built{name: name, prefix: prefix}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Routes sets the module's own route registration
func (b *Built) Routes(fn func(httpkit.Router)) { b.routes = fn }

func (b *Built) Name() string   { return pstrings.MustString(b.name, "module name") }
func (b *Built) Prefix() string { return pstrings.MustPrefix(b.prefix) }

// MountRoutes mounts the module under its prefix with its middleware
func (b *Built) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, b.Prefix(), b.mws, func(sub httpkit.Router) {
		if b.routes != nil {
			b.routes(sub)
		}
		for _, fn := range b.extra {
			fn(sub)
		}
	})
}
