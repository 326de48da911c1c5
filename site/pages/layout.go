// Package pages renders the site's full HTML documents. Each page places
// its sections inline, lazily or deferred; the handlers in package site
// open the page view whose ID the sections carry.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite"
	"github.com/pthm/hxsite/site/internal/markup"
)

// HTMXSrc is the htmx build the layout loads.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4"

// SiteName is shown in the title and navigation.
const SiteName = "Prompt Studio"

// Meta describes the document around a page body.
type Meta struct {
	Title string
	Path  string
	// ViewID is the page view the body's sections belong to. Pages
	// without async sections leave it empty.
	ViewID string
}

var navLinks = []struct{ Href, Label string }{
	{"/", "Home"},
	{"/gallery", "Gallery"},
	{"/pricing", "Pricing"},
}

// Layout wraps body in the site shell.
func Layout(meta Meta, body templ.Component) templ.Component {
	title := SiteName
	if meta.Title != "" {
		title = meta.Title + " | " + SiteName
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Raw("<!doctype html>")
		m.Open("html", templ.Attributes{"lang": "en"})
		m.Open("head", nil)
		m.Raw(`<meta charset="utf-8">`, `<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.Elem("title", nil, title)
		m.Raw(`<link rel="stylesheet" href="/static/site.css">`)
		m.Open("script", templ.Attributes{"src": HTMXSrc, "defer": true}).Close("script")
		m.Open("script", templ.Attributes{"src": "/static/site.js", "defer": true}).Close("script")
		m.Close("head")

		bodyAttrs := templ.Attributes{}
		if meta.ViewID != "" {
			bodyAttrs["data-view"] = meta.ViewID
		}
		m.Open("body", bodyAttrs)
		nav(m, meta.Path)
		m.Open("main", markup.Class("container"))
		m.Component(body)
		m.Close("main")
		m.Open("footer", markup.Class("site-footer"))
		m.Elem("p", nil, "© "+SiteName)
		m.Close("footer")
		m.Component(hxsite.ToastContainer())
		m.Close("body")
		m.Close("html")
		return m.Err()
	})
}

func nav(m *markup.Writer, current string) {
	m.Open("nav", markup.Class("site-nav"))
	m.Elem("a", templ.Attributes{"href": "/", "class": "brand"}, SiteName)
	m.Open("ul", nil)
	for _, l := range navLinks {
		attrs := templ.Attributes{"href": l.Href}
		if l.Href == current {
			attrs["aria-current"] = "page"
		}
		m.Open("li", nil)
		m.Elem("a", attrs, l.Label)
		m.Close("li")
	}
	m.Close("ul")
	m.Close("nav")
}
