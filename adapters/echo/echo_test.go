package hxsiteecho

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/hxsite"
)

type pingProps struct {
	N int `msgpack:"n"`
}

type ping struct {
	*hxsite.Component[pingProps]
}

func (p *ping) Hydrate(ctx context.Context, props *pingProps) error { return nil }

func (p *ping) Render(ctx context.Context, props pingProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<b>pong %d</b>", props.N)
		return err
	})
}

func newRegistry(t *testing.T) (*hxsite.Registry, *ping) {
	t.Helper()
	key, err := RandomKey()
	if err != nil {
		t.Fatal(err)
	}
	reg, err := hxsite.NewRegistry(key)
	if err != nil {
		t.Fatal(err)
	}
	p := &ping{Component: hxsite.New[pingProps]("ping")}
	if err := reg.Add(p); err != nil {
		t.Fatal(err)
	}
	return reg, p
}

func TestMount(t *testing.T) {
	e := echo.New()
	reg, p := newRegistry(t)
	Mount(e, reg)

	req := httptest.NewRequest(http.MethodGet, p.Refresh(pingProps{N: 3}).URL(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "<b>pong 3</b>" {
		t.Errorf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	reg, p := newRegistry(t)
	hit := false
	g := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hit = true
			return next(c)
		}
	})
	MountGroup(g, reg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p.Refresh(pingProps{}).URL(), nil))
	if !hit || rec.Code != http.StatusOK {
		t.Errorf("middleware hit=%v status=%d", hit, rec.Code)
	}
}

func TestCSRFProtection(t *testing.T) {
	e := echo.New()
	reg, p := newRegistry(t)
	Mount(e, reg)

	req := httptest.NewRequest(http.MethodPost, p.HXPrefix()+"/anything", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for POST without HX-Request, got %d", rec.Code)
	}
}

func TestWithPathDoesNotServeDefault(t *testing.T) {
	e := echo.New()
	reg, _ := newRegistry(t)
	Mount(e, reg, WithPath("/components/"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_c/ping-x/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRandomKey(t *testing.T) {
	a, _ := RandomKey()
	b, _ := RandomKey()
	if len(a) != 32 || string(a) == string(b) {
		t.Errorf("keys not random: %x %x", a, b)
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>ok</p>")
		return err
	})
	if err := Render(c, comp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") || rec.Body.String() != "<p>ok</p>" {
		t.Errorf("content-type=%q body=%q", rec.Header().Get("Content-Type"), rec.Body.String())
	}
}
