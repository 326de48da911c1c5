// Package hxsite is a small server-rendered component layer on top of templ
// and htmx. The marketing site under site/ is built with it.
//
// A component embeds *Component[P], where P is its props type. Props should
// carry IDs only; Hydrate turns them back into live objects before any
// handler runs, and Render produces the markup.
//
//	type Newsletter struct {
//	    *hxsite.Component[NewsletterProps]
//	    views *views.Store
//	}
//
// # Actions
//
// Actions are registered by name and addressed with Call:
//
//	c.Action("submit", c.handleSubmit)
//	c.Call("submit", props).Target("this").Attrs()
//
// Refresh re-renders the component with the same props. Lazy and Defer emit
// a placeholder that loads the component on "intersect once" or "load".
//
// # Props
//
// Props travel in every URL and form the component builds. They are
// msgpack-encoded and HMAC-signed by default, or AES-GCM encrypted for
// components marked Sensitive. Both keys are derived from one secret.
//
// # Requests
//
// Mutating requests must carry the HX-Request header. Errors from hydration
// or handlers go to the registry's ErrorHandler; the default maps expired
// page views to 286 so polling sections stop.
//
//	reg, err := hxsite.NewRegistry(secret, hxsite.WithLogger(logger))
//	if err := reg.Add(gallery, newsletter); err != nil { ... }
//	mux.Handle("/_c/", reg.Handler())
package hxsite
