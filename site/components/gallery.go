package components

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite"
	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/site/internal/markup"
	"github.com/pthm/hxsite/site/views"
)

// GalleryProps address one gallery section. Only View, Section and Phase
// are encoded; the rest is filled in by Hydrate.
type GalleryProps struct {
	View    string `msgpack:"v"`
	Section string `msgpack:"s"`
	Phase   string `msgpack:"ph,omitempty"`

	ctrl  *async.FetchController
	state async.FetchState
}

// Gallery renders the photo grid backed by a FetchController.
type Gallery struct {
	*hxsite.Component[GalleryProps]
	views *views.Store
	poll  time.Duration
}

// NewGallery creates the gallery component.
func NewGallery(store *views.Store, poll time.Duration) *Gallery {
	c := &Gallery{
		Component: hxsite.New[GalleryProps]("gallery"),
		views:     store,
		poll:      poll,
	}
	c.Action("state", c.handleState).Method(http.MethodGet)
	c.Action("retry", c.handleRetry)
	return c
}

// Hydrate requests the section, which starts the search on first use, and
// snapshots its state.
func (c *Gallery) Hydrate(ctx context.Context, props *GalleryProps) error {
	v, err := lookupView(c.views, props.View)
	if err != nil {
		return err
	}
	if props.Section == "" {
		props.Section = SectionGallery
	}
	fc, err := v.Fetch(props.Section)
	if err != nil {
		return sectionErr(err)
	}
	props.ctrl = fc
	props.state = fc.State()
	return nil
}

func (c *Gallery) handleState(ctx context.Context, props GalleryProps, r *http.Request) hxsite.Result[GalleryProps] {
	return c.respond(props)
}

func (c *Gallery) handleRetry(ctx context.Context, props GalleryProps, r *http.Request) hxsite.Result[GalleryProps] {
	if err := props.ctrl.Retry(); err != nil && !errors.Is(err, async.ErrInvalidTransition) {
		return hxsite.Err(props, err)
	}
	return c.respond(props)
}

// respond re-reads the controller and announces the first Success the
// client sees.
func (c *Gallery) respond(props GalleryProps) hxsite.Result[GalleryProps] {
	prev := props.Phase
	props.state = props.ctrl.State()
	props.Phase = props.state.Phase.String()

	res := hxsite.OK(props)
	if props.state.Phase == async.FetchSuccess && prev != props.Phase {
		res = res.Trigger(EventGalleryLoaded, map[string]any{"count": len(props.state.Items)})
	}
	return res
}

// Render draws the section for the snapshotted state.
func (c *Gallery) Render(ctx context.Context, props GalleryProps) templ.Component {
	props.Phase = props.state.Phase.String()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		attrs := templ.Attributes{"id": props.Section, "class": "gallery-section"}

		switch props.state.Phase {
		case async.FetchLoading:
			attrs["aria-busy"] = "true"
			poll := c.Call("state", props).Target("this").On(every(c.poll)).Attrs()
			m.Open("section", markup.Merge(attrs, poll))
			m.Component(GallerySkeleton())
			m.Elem("p", markup.Class("sr-only"), "Loading gallery...")

		case async.FetchFailure:
			m.Open("section", attrs)
			m.Open("div", markup.Class("gallery-error"))
			m.Elem("p", markup.Class("error-text"), "Error: "+props.state.Message)
			retry := c.Call("retry", props).TargetClosest("section").DisableWhileRequesting("this").Attrs()
			m.Elem("button", markup.Merge(retry, templ.Attributes{"type": "button", "class": "btn btn-primary"}), "Try Again")
			m.Close("div")

		default:
			m.Open("section", attrs)
			if len(props.state.Items) == 0 {
				m.Elem("p", markup.Class("gallery-empty"), "No photos found.")
			} else {
				m.Open("div", markup.Class("gallery-grid"))
				for _, item := range props.state.Items {
					galleryCard(m, item)
				}
				m.Close("div")
			}
		}

		m.Close("section")
		return m.Err()
	})
}

func galleryCard(m *markup.Writer, item async.DisplayItem) {
	m.Open("article", templ.Attributes{"class": "card", "data-id": item.ID})
	m.Open("div", markup.Class("card-image"))
	m.Open("img", templ.Attributes{
		"src":     markup.SafeURL(item.ImageRef),
		"alt":     item.Title,
		"loading": "lazy",
	})
	m.Close("div")

	m.Open("div", markup.Class("card-body"))
	m.Elem("h3", nil, item.Title)
	m.Elem("p", markup.Class("card-description"), item.Description)
	m.Open("ul", markup.Class("tags"))
	for _, tag := range item.Tags {
		m.Elem("li", nil, tag)
	}
	m.Close("ul")
	if item.AttributionName != "" {
		m.Open("p", markup.Class("credit")).Text("Photo by ")
		if item.AttributionURI != "" {
			m.Elem("a", templ.Attributes{
				"href":   markup.SafeURL(item.AttributionURI),
				"target": "_blank",
				"rel":    "noopener noreferrer",
			}, item.AttributionName)
		} else {
			m.Text(item.AttributionName)
		}
		m.Close("p")
	}
	m.Close("div")
	m.Close("article")
}

// GallerySkeleton is the placeholder grid shown until photos arrive.
func GallerySkeleton() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("div", templ.Attributes{"class": "gallery-grid", "aria-hidden": "true"})
		for i := 0; i < 6; i++ {
			m.Raw(`<div class="card skeleton"><div class="card-image"></div>`,
				`<div class="card-body"><div class="line"></div><div class="line short"></div></div></div>`)
		}
		m.Close("div")
		return m.Err()
	})
}
