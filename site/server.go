// Package site assembles the marketing site: page routes, component
// routes, health and metrics endpoints, and the process lifecycle.
package site

import (
	"embed"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm/hxsite"
	hxsiteecho "github.com/pthm/hxsite/adapters/echo"
	"github.com/pthm/hxsite/site/components"
	"github.com/pthm/hxsite/site/pages"
	"github.com/pthm/hxsite/site/views"
)

//go:embed static
var staticFiles embed.FS

// Page names recorded on views.
const (
	PageHome    = "home"
	PageGallery = "gallery"
)

// Deps are what NewServer routes to.
type Deps struct {
	Registry    *hxsite.Registry
	Store       *views.Store
	Components  *components.Set
	Controllers Controllers
	Logger      *slog.Logger

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Version     string
}

type server struct {
	Deps
}

// NewServer builds the Echo instance serving the site.
func NewServer(deps Deps) *echo.Echo {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = "/metrics"
	}
	s := &server{Deps: deps}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				s.Logger.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			s.Logger.Debug("request", attrs...)
			return nil
		},
	}))

	e.GET("/", s.home)
	e.GET("/gallery", s.gallery)
	e.GET("/pricing", s.pricing)
	e.GET("/healthz", s.healthz)
	e.POST("/_views/close", s.closeView)
	if s.Gatherer != nil {
		e.GET(s.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
	e.StaticFS("/static", echo.MustSubFS(staticFiles, "static"))

	hxsiteecho.Mount(e, s.Registry)
	return e
}

func (s *server) home(c echo.Context) error {
	v := s.Store.Open(PageHome, Threshold, s.Controllers.HomeSections()...)
	meta := pages.Meta{Path: "/", ViewID: v.ID}
	return hxsiteecho.Render(c, pages.Layout(meta, pages.Home(s.Components, v.ID)))
}

func (s *server) gallery(c echo.Context) error {
	v := s.Store.Open(PageGallery, Threshold, s.Controllers.GallerySections()...)
	meta := pages.Meta{Title: "Gallery", Path: "/gallery", ViewID: v.ID}
	return hxsiteecho.Render(c, pages.Layout(meta, pages.Gallery(s.Components, v.ID)))
}

func (s *server) pricing(c echo.Context) error {
	meta := pages.Meta{Title: "Pricing", Path: "/pricing"}
	return hxsiteecho.Render(c, pages.Layout(meta, pages.Pricing(pages.Plans)))
}

type health struct {
	Status  string `json:"status"`
	Views   int    `json:"views"`
	Version string `json:"version,omitempty"`
}

func (s *server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, health{Status: "ok", Views: s.Store.Len(), Version: s.Version})
}

// closeView receives the page's unload beacon. Unknown IDs are ignored.
func (s *server) closeView(c echo.Context) error {
	if id := c.FormValue("view"); id != "" {
		s.Store.Close(id)
	}
	return c.NoContent(http.StatusNoContent)
}
