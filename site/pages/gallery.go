package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite/site/components"
	"github.com/pthm/hxsite/site/internal/markup"
)

// Gallery is the full gallery page.
func Gallery(set *components.Set, viewID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("header", markup.Class("page-header"))
		m.Elem("h1", nil, "Gallery")
		m.Elem("p", markup.Class("lede"), "Explore our collection of AI-generated artwork")
		m.Close("header")
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
