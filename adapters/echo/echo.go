// Package hxsiteecho mounts hxsite components on an Echo server.
//
//	e := echo.New()
//	reg, _ := hxsite.NewRegistry(secret)
//	hxsiteecho.Mount(e, reg)
//
// Or on a group, so components share its middleware:
//
//	g := e.Group("/app", rateLimit)
//	hxsiteecho.MountGroup(g, reg)
package hxsiteecho

import (
	"crypto/rand"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/hxsite"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	path string
}

// WithPath sets the URL path prefix for component routes. Defaults to
// "/_c/", which is where hxsite.New places component prefixes.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// Mount routes every method under the component path to reg.
func Mount(e *echo.Echo, reg *hxsite.Registry, opts ...Option) {
	e.Any(buildOptions(opts).path+"*", echo.WrapHandler(reg.Handler()))
}

// MountGroup is Mount for an Echo group.
func MountGroup(g *echo.Group, reg *hxsite.Registry, opts ...Option) {
	g.Any(buildOptions(opts).path+"*", echo.WrapHandler(reg.Handler()))
}

func buildOptions(opts []Option) *options {
	o := &options{path: "/_c/"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RandomKey returns a fresh 32-byte secret. Props signed with it do not
// survive a restart, so use it for development only.
func RandomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("hxsiteecho: generate key: %w", err)
	}
	return key, nil
}

// Render writes a templ component as the Echo response.
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response())
}
