package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite/site/internal/markup"
)

// Feature is one entry in the features grid.
type Feature struct {
	Title       string
	Description string
}

// HomeFeatures are the selling points on the home page.
var HomeFeatures = []Feature{
	{
		Title:       "AI-Powered Generation",
		Description: "Create unique illustrations and logos in seconds using advanced AI technology",
	},
	{
		Title:       "Professional Quality",
		Description: "Get high-resolution, print-ready artwork suitable for any project",
	},
	{
		Title:       "Easy to Use",
		Description: "Simple text prompts transform into beautiful artwork with just a few clicks",
	},
}

// Hero is the home page banner.
func Hero() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("section", templ.Attributes{"id": SectionHero, "class": "hero"})
		m.Elem("h1", nil, "Turn Words Into Art")
		m.Elem("p", markup.Class("hero-lede"), "Generate illustrations and logos from a simple text prompt.")
		m.Open("div", markup.Class("hero-actions"))
		m.Elem("a", templ.Attributes{"href": "/pricing", "class": "btn btn-primary"}, "Get Started")
		m.Elem("a", templ.Attributes{"href": "/gallery", "class": "btn btn-secondary"}, "View Gallery")
		m.Close("div")
		m.Close("section")
		return m.Err()
	})
}

// Features renders the features grid.
func Features(features []Feature) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("section", templ.Attributes{"id": SectionFeatures, "class": "features"})
		m.Open("div", markup.Class("features-grid"))
		for _, f := range features {
			m.Open("div", markup.Class("feature"))
			m.Elem("h3", nil, f.Title)
			m.Elem("p", nil, f.Description)
			m.Close("div")
		}
		m.Close("div")
		m.Close("section")
		return m.Err()
	})
}
