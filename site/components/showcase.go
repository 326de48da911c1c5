package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite"
	"github.com/pthm/hxsite/site/internal/markup"
	"github.com/pthm/hxsite/site/views"
)

// FontSample is one typeface in the showcase.
type FontSample struct {
	Name   string
	Family string
	Sample string
}

// DefaultFonts are the typefaces the showcase presents.
var DefaultFonts = []FontSample{
	{Name: "Inter", Family: "'Inter', sans-serif", Sample: "Clean lines for interfaces and product copy"},
	{Name: "Playfair Display", Family: "'Playfair Display', serif", Sample: "Elegant headlines with high contrast"},
	{Name: "Space Grotesk", Family: "'Space Grotesk', sans-serif", Sample: "Geometric character for modern brands"},
	{Name: "JetBrains Mono", Family: "'JetBrains Mono', monospace", Sample: "prompt: \"neon koi, watercolor\""},
}

// ShowcaseProps address the font showcase section.
type ShowcaseProps struct {
	View    string `msgpack:"v"`
	Section string `msgpack:"s"`
}

// Showcase is a static section loaded when scrolled into view. It has no
// controller; requesting it marks it Ready in the page's composition.
type Showcase struct {
	*hxsite.Component[ShowcaseProps]
	views *views.Store
	fonts []FontSample
}

// NewShowcase creates the font showcase component.
func NewShowcase(store *views.Store, fonts []FontSample) *Showcase {
	if fonts == nil {
		fonts = DefaultFonts
	}
	return &Showcase{
		Component: hxsite.New[ShowcaseProps]("fonts"),
		views:     store,
		fonts:     fonts,
	}
}

// Hydrate marks the section as requested.
func (c *Showcase) Hydrate(ctx context.Context, props *ShowcaseProps) error {
	v, err := lookupView(c.views, props.View)
	if err != nil {
		return err
	}
	if props.Section == "" {
		props.Section = SectionShowcase
	}
	if _, err := v.Request(props.Section); err != nil {
		return sectionErr(err)
	}
	return nil
}

// Render draws the font cards.
func (c *Showcase) Render(ctx context.Context, props ShowcaseProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("section", templ.Attributes{"id": props.Section, "class": "font-showcase"})
		m.Elem("h2", nil, "Typography That Stands Out")
		m.Open("div", markup.Class("font-grid"))
		for _, f := range c.fonts {
			m.Open("div", markup.Class("font-card"))
			m.Elem("h3", nil, f.Name)
			m.Elem("p", templ.Attributes{"class": "font-sample", "style": "font-family: " + f.Family}, f.Sample)
			m.Close("div")
		}
		m.Close("div")
		m.Close("section")
		return m.Err()
	})
}

// Spinner renders a loading indicator with a caption.
func Spinner(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("div", templ.Attributes{"class": "spinner-wrap", "role": "status"})
		m.Raw(`<div class="spinner spinner-lg" aria-hidden="true"></div>`)
		m.Elem("p", markup.Class("spinner-text"), text)
		m.Close("div")
		return m.Err()
	})
}
