package hxsite

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// Hydrater is implemented by components to rebuild request state from props
// before any handler runs. Sections use it to look up their page view and
// controller from the IDs carried in props.
//
//	func (c *Gallery) Hydrate(ctx context.Context, props *GalleryProps) error {
//	    view, ok := c.views.Get(props.View)
//	    if !ok {
//	        return hxsite.ErrViewExpired
//	    }
//	    props.Fetch = view.Fetch(props.Section)
//	    return nil
//	}
type Hydrater[P any] interface {
	Hydrate(ctx context.Context, props *P) error
}

// Renderer is implemented by components to produce their markup. It is
// called for GET requests and after every action that returns OK.
type Renderer[P any] interface {
	Render(ctx context.Context, props P) templ.Component
}

// HXComponent is what the registry mounts. Embedding *Component[P] provides
// it.
type HXComponent interface {
	HXPrefix() string
	HXServeHTTP(w http.ResponseWriter, r *http.Request)
}

// mountable is satisfied by any type embedding *Component[P].
type mountable interface {
	HXComponent
	mount(parent any, reg *Registry) error
}
