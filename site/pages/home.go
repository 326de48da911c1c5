package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite/site/components"
	"github.com/pthm/hxsite/site/internal/markup"
)

// Home is the landing page: hero and features inline, the font showcase
// and gallery loaded when scrolled into view, the newsletter after load.
func Home(set *components.Set, viewID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Component(components.Hero())
		m.Component(components.Features(components.HomeFeatures))
		m.Component(set.Showcase.Lazy(
			components.ShowcaseProps{View: viewID, Section: components.SectionShowcase},
			components.Spinner("Loading fonts..."),
		))
		m.Component(set.Gallery.Lazy(
			components.GalleryProps{View: viewID, Section: components.SectionGallery},
			components.GallerySkeleton(),
		))
		m.Component(set.Newsletter.Defer(
			components.NewsletterProps{View: viewID, Section: components.SectionNewsletter},
			components.NewsletterSkeleton(),
		))
		return m.Err()
	})
}
